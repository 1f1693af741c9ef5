package handler

import (
	"net/http"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/alert"
	"github.com/airwatch/airwatch/internal/api/models"
	"github.com/airwatch/airwatch/internal/api/response"
	"github.com/airwatch/airwatch/internal/jobs"
)

// MetadataHandler serves the closed value sets used by the API.
type MetadataHandler struct {
	enums models.Enums
}

// NewMetadataHandler creates a MetadataHandler. The job names are taken from
// registry at construction.
func NewMetadataHandler(registry *jobs.Registry) *MetadataHandler {
	levels := airquality.Levels()
	info := make([]models.AQILevelInfo, 0, len(levels))
	for _, l := range levels {
		info = append(info, models.NewAQILevelInfo(l))
	}

	names := []string{}
	if registry != nil {
		names = registry.Names()
	}

	return &MetadataHandler{enums: models.Enums{
		AQILevels:       info,
		AlertSeverities: alert.Severities(),
		JobStatuses:     jobs.Statuses(),
		JobNames:        names,
		Views:           []airquality.View{airquality.ViewFull, airquality.ViewMinimal},
		Pollutants: []airquality.Pollutant{
			airquality.PollutantPM25,
			airquality.PollutantNO2,
			airquality.PollutantO3,
			airquality.PollutantSO2,
			airquality.PollutantCO,
		},
	}}
}

// GetEnums handles GET /v1/metadata/enums.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.enums)
}
