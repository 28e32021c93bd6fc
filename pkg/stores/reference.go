package stores

import "github.com/matst80/store-locator/pkg/geo"

// ReferenceStores returns the Mississauga demo catalog. A new slice is built
// on every call so callers may keep it.
func ReferenceStores() []Store {
	return []Store{
		{
			ID:       "1",
			Name:     "Loblaws",
			Address:  "2885 Argentia Rd, Mississauga, ON L5N 8G6",
			Phone:    "(905) 826-0384",
			Location: &geo.Location{Latitude: 43.5890, Longitude: -79.6441},
			Hours:    "7:00 AM - 11:00 PM",
			Products: []string{"KitKat", "Smarties", "Quality Street", "Coffee Crisp", "Aero"},
		},
		{
			ID:       "2",
			Name:     "Metro",
			Address:  "3045 Mavis Rd, Mississauga, ON L5B 4M6",
			Phone:    "(905) 270-3500",
			Location: &geo.Location{Latitude: 43.5845, Longitude: -79.6503},
			Hours:    "8:00 AM - 10:00 PM",
			Products: []string{"KitKat", "Smarties", "Coffee Crisp", "Butterfinger"},
		},
		{
			ID:       "3",
			Name:     "Walmart Supercentre",
			Address:  "6040 Glen Erin Dr, Mississauga, ON L5N 3K4",
			Phone:    "(905) 824-1421",
			Location: &geo.Location{Latitude: 43.5798, Longitude: -79.6198},
			Hours:    "7:00 AM - 11:00 PM",
			Products: []string{"KitKat", "Smarties", "Quality Street", "Coffee Crisp", "Aero", "Butterfinger"},
		},
		{
			ID:       "4",
			Name:     "Sobeys",
			Address:  "900 Rathburn Rd W, Mississauga, ON L5C 4L2",
			Phone:    "(905) 275-8500",
			Location: &geo.Location{Latitude: 43.5965, Longitude: -79.6321},
			Hours:    "8:00 AM - 10:00 PM",
			Products: []string{"KitKat", "Quality Street", "Coffee Crisp", "Aero"},
		},
		{
			ID:       "5",
			Name:     "No Frills",
			Address:  "2550 Hurontario St, Mississauga, ON L5B 1N5",
			Phone:    "(905) 276-8111",
			Location: &geo.Location{Latitude: 43.5721, Longitude: -79.6441},
			Hours:    "8:00 AM - 9:00 PM",
			Products: []string{"KitKat", "Smarties", "Coffee Crisp"},
		},
		{
			ID:       "6",
			Name:     "FreshCo",
			Address:  "3221 Derry Rd W, Mississauga, ON L5N 7L7",
			Phone:    "(905) 826-2200",
			Location: &geo.Location{Latitude: 43.5834, Longitude: -79.6578},
			Hours:    "8:00 AM - 10:00 PM",
			Products: []string{"KitKat", "Smarties", "Quality Street", "Aero"},
		},
	}
}
