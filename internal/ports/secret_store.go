package ports

import "context"

//go:generate mockgen -package=mocks -destination=mocks/secret_store.go -source=secret_store.go SecretStore
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
