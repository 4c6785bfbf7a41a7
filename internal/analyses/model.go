package analyses

import (
	"time"

	"tire-backend/internal/tires"
)

// Analysis is one persisted tire analysis.
type Analysis struct {
	ID         string               `json:"id"`
	OwnerID    string               `json:"ownerId"`
	ImageURL   string               `json:"imageUrl"`
	Attributes tires.Attributes     `json:"attributes"`
	Result     tires.AnalysisResult `json:"result"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// FormData is the declared tire attributes as posted by the storefront.
type FormData struct {
	TireType       string `json:"tireType"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Size           string `json:"size"`
	ProductionYear int    `json:"productionYear"`
	Mileage        string `json:"mileage"`
}

// Request is the body of POST /analyze.
type Request struct {
	ImageURL   string   `json:"imageUrl"`
	FormData   FormData `json:"formData"`
	DetectOnly bool     `json:"detectOnly"`
}

// Attributes converts the form into the attributes the engine scores.
func (f FormData) Attributes() tires.Attributes {
	return tires.Attributes{
		TireType:       tires.ParseTireType(f.TireType),
		Brand:          f.Brand,
		Model:          f.Model,
		Size:           f.Size,
		ProductionYear: f.ProductionYear,
		MileageRaw:     f.Mileage,
	}
}
