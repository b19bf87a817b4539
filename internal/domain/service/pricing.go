package service

import "PriceSim/internal/domain/models"

// Projector maps projection parameters to a weekly price series.
type Projector interface {
	Project(params models.ProjectionParameters) (models.PriceSeries, error)
}
