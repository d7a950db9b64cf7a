package estate

import "github.com/goliatone/go-estate-dashboard/components/analytics"

// DemoData returns the fixtures used when the mock backend runs without a
// fixtures file.
func DemoData() MockData {
	return MockData{
		Exploratory: analytics.ExploratoryDataset{
			BedroomDistribution: []analytics.DistributionEntry{
				{Category: 1, Count: 199, Label: "1 Bedroom"},
				{Category: 2, Count: 2760, Label: "2 Bedroom"},
				{Category: 3, Count: 9824, Label: "3 Bedroom"},
				{Category: 4, Count: 8830, Label: "4+ Bedrooms"},
			},
			BathroomDistribution: []analytics.DistributionEntry{
				{Category: 1, Count: 3852, Label: "1 Bathroom"},
				{Category: 2, Count: 1930, Label: "2 Bathroom"},
				{Category: 3, Count: 753, Label: "3 Bathroom"},
				{Category: 4, Count: 136, Label: "4+ Bathrooms"},
			},
			SqftLotVsPrice: []analytics.SqftLotPoint{
				{SqftLot: 5650, Price: 221900},
				{SqftLot: 7242, Price: 538000},
				{SqftLot: 10000, Price: 180000},
				{SqftLot: 5000, Price: 604000},
				{SqftLot: 8080, Price: 510000},
			},
			FloorsVsPrice: []analytics.FloorsPoint{
				{Floors: 1, Price: 221900},
				{Floors: 2, Price: 538000},
				{Floors: 1, Price: 180000},
				{Floors: 1.5, Price: 604000},
				{Floors: 3, Price: 1225000},
			},
		},
		Performance: []analytics.ModelPerformanceEntry{
			{Model: string(analytics.ModelRidge), Metrics: analytics.ModelMetrics{MSE: 12000, R2: 0.81}},
			{Model: string(analytics.ModelDecisionTree), Metrics: analytics.ModelMetrics{MSE: 15500, R2: 0.74}},
			{Model: string(analytics.ModelRandomForest), Metrics: analytics.ModelMetrics{MSE: 9000, R2: 0.88}},
		},
		HousePrices: []analytics.HousePrice{
			{Latitude: 47.5112, Longitude: -122.257, Price: 221900},
			{Latitude: 47.721, Longitude: -122.319, Price: 538000},
			{Latitude: 47.6168, Longitude: -122.045, Price: 1225000},
		},
		PredictedPrice: 452317.89,
	}
}
