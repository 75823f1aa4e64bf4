package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/skillbridge/internal/models"
)

var ErrRunNotFound = errors.New("analysis run not found")

type AnalysisRunRepository interface {
	Create(run *models.AnalysisRun) error
	FindByID(id uuid.UUID) (*models.AnalysisRun, error)
	FindRecent(limit int) ([]models.AnalysisRun, error)
}

type analysisRunRepository struct {
	db *gorm.DB
}

func NewAnalysisRunRepository(db *gorm.DB) AnalysisRunRepository {
	return &analysisRunRepository{db: db}
}

func (r *analysisRunRepository) Create(run *models.AnalysisRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create analysis run: %w", err)
	}
	return nil
}

func (r *analysisRunRepository) FindByID(id uuid.UUID) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to find analysis run: %w", err)
	}
	return &run, nil
}

func (r *analysisRunRepository) FindRecent(limit int) ([]models.AnalysisRun, error) {
	var runs []models.AnalysisRun
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find recent runs: %w", err)
	}

	return runs, nil
}
