package analytics

// HousePrice is a geolocated sale price served for the map view.
type HousePrice struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Price     float64 `json:"price" yaml:"price"`
}

// PriceBand buckets prices for marker coloring.
type PriceBand string

const (
	PriceBandLow    PriceBand = "low"
	PriceBandMedium PriceBand = "medium"
	PriceBandHigh   PriceBand = "high"
)

const (
	highPriceThreshold   = 900000
	mediumPriceThreshold = 500000
)

var priceBandColors = map[PriceBand]string{
	PriceBandLow:    "green",
	PriceBandMedium: "yellow",
	PriceBandHigh:   "red",
}

// BandFor classifies a price. Thresholds are exclusive.
func BandFor(price float64) PriceBand {
	switch {
	case price > highPriceThreshold:
		return PriceBandHigh
	case price > mediumPriceThreshold:
		return PriceBandMedium
	default:
		return PriceBandLow
	}
}

// Color returns the marker color of the band.
func (b PriceBand) Color() string {
	return priceBandColors[b]
}

// PriceMarker is a house price ready for a map layer.
type PriceMarker struct {
	HousePrice
	Band  PriceBand `json:"band"`
	Color string    `json:"color"`
}

// ToPriceMarkers attaches a band and color to every point.
func ToPriceMarkers(prices []HousePrice) []PriceMarker {
	out := make([]PriceMarker, len(prices))
	for i, p := range prices {
		band := BandFor(p.Price)
		out[i] = PriceMarker{HousePrice: p, Band: band, Color: band.Color()}
	}
	return out
}
