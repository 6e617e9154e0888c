package repos

import (
	"github.com/tauraamui/rppgtracker/pkg/database/dbconn"
	"github.com/tauraamui/rppgtracker/pkg/database/models"
	"github.com/tauraamui/xerror"
)

type SessionRepository struct {
	DB dbconn.GormWrapper
}

func (r *SessionRepository) Create(session *models.Session) error {
	return r.DB.Create(session).Error()
}

func (r *SessionRepository) FindByUUID(uuid string) (models.Session, error) {
	session := models.Session{}
	if err := r.DB.Where("uuid = ?", uuid).First(&session).Error(); err != nil {
		return session, xerror.Errorf("session of uuid %s not found", uuid)
	}

	return session, nil
}

type StrategyResultRepository struct {
	DB dbconn.GormWrapper
}

func (r *StrategyResultRepository) Create(result *models.StrategyResult) error {
	return r.DB.Create(result).Error()
}

// FindBySession returns a session's results in configuration order.
func (r *StrategyResultRepository) FindBySession(sessionUUID string) ([]models.StrategyResult, error) {
	results := []models.StrategyResult{}
	if err := r.DB.Where("session_uuid = ?", sessionUUID).Order("position").Find(&results).Error(); err != nil {
		return nil, xerror.Errorf("unable to load results for session %s: %w", sessionUUID, err)
	}

	return results, nil
}
