package repos

import (
	"github.com/tauraamui/rppgtracker/pkg/database/dbconn"
	"github.com/tauraamui/rppgtracker/pkg/database/models"
	"github.com/tauraamui/xerror"
)

type SeriesRepository struct {
	DB dbconn.GormWrapper
}

func (r *SeriesRepository) Create(series *models.Series) error {
	return r.DB.Create(series).Error()
}

func (r *SeriesRepository) FindBySplit(split string) ([]models.Series, error) {
	series := []models.Series{}
	if err := r.DB.Where("split = ?", split).Find(&series).Error(); err != nil {
		return nil, xerror.Errorf("unable to load %s series: %w", split, err)
	}

	return series, nil
}
