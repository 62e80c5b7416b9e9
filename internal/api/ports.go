package api

import (
	"context"

	"fintrack/internal/core"
)

// Ports for the REST backend collaborator. Every call is a single attempt
// synchronized to the caller's trigger: no retries, no deadlines, no
// request deduplication.
type (
	Authenticator interface {
		// Login exchanges credentials for a bearer token. Rejected
		// credentials surface as ErrUnauthorized.
		Login(ctx context.Context, email, password string) (token string, err error)

		// Register creates an account; it does not log the user in.
		Register(ctx context.Context, email, password string) error

		// Me resolves the profile behind a token. An invalid or expired
		// token surfaces as ErrUnauthorized.
		Me(ctx context.Context, token string) (core.User, error)
	}

	// SummaryReader provides the server-computed dashboard aggregate.
	SummaryReader interface {
		Summary(ctx context.Context, token string, f core.TransactionFilter) (core.Summary, error)
	}

	TransactionStore interface {
		ListTransactions(ctx context.Context, token string, f core.TransactionFilter) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, token string, in core.TransactionInput) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, token string, id string, in core.TransactionInput) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, token string, id string) error

		// ExportTransactions returns the raw CSV payload for the same
		// filters as ListTransactions.
		ExportTransactions(ctx context.Context, token string, f core.TransactionFilter) ([]byte, error)
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, token string) ([]core.Category, error)
		CreateCategory(ctx context.Context, token string, in core.CategoryInput) (core.Category, error)
		UpdateCategory(ctx context.Context, token string, id string, in core.CategoryInput) (core.Category, error)
		DeleteCategory(ctx context.Context, token string, id string) error
	}
)
