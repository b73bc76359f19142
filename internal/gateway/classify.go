package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/localnerve/portfolio-site/internal/utils"
	"gorm.io/gorm"
)

var (
	schemaMissingText = []string{
		"no such table",
		"invalid object name",
		"doesn't exist",
		"undefined_table",
	}
	permissionText = []string{
		"permission denied",
		"row-level security",
		"command denied",
		"access denied",
	}
	conflictText = []string{
		"unique constraint failed",
		"duplicate key",
		"duplicate entry",
	}
)

// classify maps a driver or gorm error onto a *types.Error.
func classify(op string, err error) error {
	var te *types.Error
	if errors.As(err, &te) {
		if te.Op == "" {
			cp := *te
			cp.Op = op
			return &cp
		}
		return te
	}

	msg := utils.SanitizeErr(err)
	kind := kindOf(err)
	if kind == types.KindNotFound {
		msg = "not found"
	}
	return types.NewError(kind, op, msg, err)
}

func kindOf(err error) types.Kind {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.KindNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.KindConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "3F000":
			return types.KindSchemaMissing
		case "42501":
			return types.KindPermissionDenied
		case "23505":
			return types.KindConflict
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1146, 1049:
			return types.KindSchemaMissing
		case 1142, 1044, 1045:
			return types.KindPermissionDenied
		case 1062:
			return types.KindConflict
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.KindBackend
	}

	text := strings.ToLower(err.Error())
	if containsAny(text, schemaMissingText) ||
		(strings.Contains(text, "does not exist") && (strings.Contains(text, "relation") || strings.Contains(text, "table"))) {
		return types.KindSchemaMissing
	}
	if containsAny(text, permissionText) {
		return types.KindPermissionDenied
	}
	if containsAny(text, conflictText) {
		return types.KindConflict
	}
	return types.KindBackend
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
