package logistics_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"logistix/internal/domain"
	"logistix/internal/infrastructure/storage/postgres"
)

// selectPage counts the rows matched by base, then scans one page of them
// into dst ordered newest first.
func selectPage(ctx context.Context, q postgres.Querier, base squirrel.SelectBuilder, page domain.ListFilter, dst any) (int64, error) {
	countSQL, countArgs, err := countQuery(base).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	if total == 0 {
		return 0, nil
	}

	sql, args, err := pageQuery(base, page).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select: %w", err)
	}
	if err := pgxscan.Select(ctx, q, dst, sql, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func countQuery(base squirrel.SelectBuilder) squirrel.SelectBuilder {
	return base.RemoveColumns().Columns("COUNT(*)")
}

func pageQuery(base squirrel.SelectBuilder, page domain.ListFilter) squirrel.SelectBuilder {
	return base.
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset))
}
