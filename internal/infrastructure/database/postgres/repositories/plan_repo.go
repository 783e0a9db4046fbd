package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/domain/schedule"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// PlanRepository implements schedule.PlanRepository on PostgreSQL.
type PlanRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPlanRepository creates a PostgreSQL-backed plan repository.
func NewPlanRepository(pool *pgxpool.Pool, log logging.Logger) *PlanRepository {
	return &PlanRepository{pool: pool, logger: log}
}

const getPlanQuery = `
SELECT p.id, p.child_asset_id, p.title, p.start_date, ca.plan_start_date,
       p.created_at, p.updated_at
FROM pm_plans p
JOIN child_assets ca ON ca.id = p.child_asset_id
WHERE p.id = $1`

// GetPlan returns the plan with its owning asset's start date populated.
func (r *PlanRepository) GetPlan(ctx context.Context, planID common.ID) (*schedule.PMPlan, error) {
	var (
		plan                 schedule.PMPlan
		id, assetID          string
		startDate, assetDate *time.Time
	)
	err := r.pool.QueryRow(ctx, getPlanQuery, planID.String()).Scan(
		&id, &assetID, &plan.Title, &startDate, &assetDate,
		&plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.New(errors.ErrCodePlanNotFound, "PM plan not found").
				WithDetail("plan_id=" + planID.String())
		}
		return nil, wrapDB(err, "failed to load plan")
	}

	plan.ID = common.ID(id)
	plan.ChildAssetID = common.ID(assetID)
	plan.StartDate = startDate
	plan.AssetStartDate = assetDate
	return &plan, nil
}
