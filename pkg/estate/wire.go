package estate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

type edaResponse struct {
	BedroomDistribution  []distributionRow `json:"bedroom_distribution"`
	BathroomDistribution []distributionRow `json:"bathroom_distribution"`
	SqftLotVsPrice       []sqftLotRow      `json:"scatter_sqft_lot_vs_price"`
	FloorsVsPrice        []floorsRow       `json:"scatter_floors_vs_price"`
}

// distributionRow accepts every row shape the backend has produced:
// {bedrooms|bathrooms|category, value|count} and {name:"3 Bedroom", value}.
type distributionRow struct {
	Bedrooms  *float64 `json:"bedrooms"`
	Bathrooms *float64 `json:"bathrooms"`
	Category  *float64 `json:"category"`
	Name      string   `json:"name"`
	Value     *float64 `json:"value"`
	Count     *float64 `json:"count"`
}

type sqftLotRow struct {
	SqftLot float64 `json:"sqft_lot"`
	Price   float64 `json:"price"`
}

type floorsRow struct {
	Floors float64 `json:"floors"`
	Price  float64 `json:"price"`
}

type predictResponse struct {
	PredictedPrice *float64 `json:"predicted_price"`
	Error          string   `json:"error"`
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

func (r edaResponse) toDataset() (analytics.ExploratoryDataset, error) {
	bedrooms, err := toDistribution("bedroom_distribution", r.BedroomDistribution)
	if err != nil {
		return analytics.ExploratoryDataset{}, err
	}
	bathrooms, err := toDistribution("bathroom_distribution", r.BathroomDistribution)
	if err != nil {
		return analytics.ExploratoryDataset{}, err
	}
	sqft := make([]analytics.SqftLotPoint, len(r.SqftLotVsPrice))
	for i, row := range r.SqftLotVsPrice {
		sqft[i] = analytics.SqftLotPoint{SqftLot: row.SqftLot, Price: row.Price}
	}
	floors := make([]analytics.FloorsPoint, len(r.FloorsVsPrice))
	for i, row := range r.FloorsVsPrice {
		floors[i] = analytics.FloorsPoint{Floors: row.Floors, Price: row.Price}
	}
	return analytics.ExploratoryDataset{
		BedroomDistribution:  bedrooms,
		BathroomDistribution: bathrooms,
		SqftLotVsPrice:       sqft,
		FloorsVsPrice:        floors,
	}, nil
}

func toDistribution(key string, rows []distributionRow) ([]analytics.DistributionEntry, error) {
	out := make([]analytics.DistributionEntry, len(rows))
	for i, row := range rows {
		category, ok := row.category()
		if !ok {
			return nil, fmt.Errorf("%s[%d]: missing category", key, i)
		}
		count, ok := row.count()
		if !ok {
			return nil, fmt.Errorf("%s[%d]: missing count", key, i)
		}
		out[i] = analytics.DistributionEntry{Category: category, Count: count, Label: row.Name}
	}
	return out, nil
}

func (r distributionRow) category() (float64, bool) {
	for _, v := range []*float64{r.Category, r.Bedrooms, r.Bathrooms} {
		if v != nil {
			return *v, true
		}
	}
	match := leadingNumber.FindStringSubmatch(r.Name)
	if match == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r distributionRow) count() (float64, bool) {
	switch {
	case r.Count != nil:
		return *r.Count, true
	case r.Value != nil:
		return *r.Value, true
	default:
		return 0, false
	}
}
