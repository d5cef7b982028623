package lookup

func airport(code string) Code { return Code{Code: code, Kind: CodeAirport} }
func station(code string) Code { return Code{Code: code, Kind: CodeStation} }

// DefaultPlaces is the built-in place list. Population is in thousands and
// only used for ranking. Codes that read as ordinary English words are left
// out so they never shadow the words themselves.
func DefaultPlaces() []Place {
	return []Place{
		{Name: "Mumbai", Population: 20700, Aliases: []string{"Bombay"}, Codes: []Code{airport("BOM"), station("BCT"), station("CSMT")}},
		{Name: "Delhi", Population: 32900, Aliases: []string{"New Delhi"}, Codes: []Code{airport("DEL"), station("NDLS")}},
		{Name: "Bangalore", Population: 13600, Aliases: []string{"Bengaluru"}, Codes: []Code{airport("BLR"), station("SBC")}},
		{Name: "Hyderabad", Population: 10800, Codes: []Code{airport("HYD"), station("HYB")}},
		{Name: "Ahmedabad", Population: 8600, Codes: []Code{airport("AMD"), station("ADI")}},
		{Name: "Chennai", Population: 11500, Aliases: []string{"Madras"}, Codes: []Code{airport("MAA"), station("MAS")}},
		{Name: "Kolkata", Population: 15300, Aliases: []string{"Calcutta"}, Codes: []Code{airport("CCU"), station("HWH")}},
		{Name: "Pune", Population: 7100, Aliases: []string{"Poona"}, Codes: []Code{airport("PNQ")}},
		{Name: "Jaipur", Population: 4100, Codes: []Code{airport("JAI"), station("JP")}},
		{Name: "Lucknow", Population: 3900, Codes: []Code{airport("LKO"), station("LKO")}},
		{Name: "Goa", Population: 1500, Codes: []Code{airport("GOI")}},
		{Name: "Kochi", Population: 2200, Aliases: []string{"Cochin"}, Codes: []Code{airport("COK"), station("ERS")}},
		{Name: "Varanasi", Population: 1700, Aliases: []string{"Benaras", "Banaras"}, Codes: []Code{airport("VNS"), station("BSB")}},
		{Name: "Agra", Population: 1900, Codes: []Code{airport("AGR")}},
		{Name: "Udaipur", Population: 600, Codes: []Code{airport("UDR")}},
		{Name: "Shimla", Population: 200, Aliases: []string{"Simla"}},
		{Name: "Manali", Population: 60},
		{Name: "Rishikesh", Population: 100},
		{Name: "Srinagar", Population: 1600, Codes: []Code{airport("SXR")}},
		{Name: "Leh", Population: 30, Codes: []Code{airport("IXL")}},
		{Name: "Amritsar", Population: 1300, Codes: []Code{airport("ATQ"), station("ASR")}},
		{Name: "Chandigarh", Population: 1200, Codes: []Code{airport("IXC")}},
		{Name: "Dubai", Population: 3600, Codes: []Code{airport("DXB")}},
		{Name: "Singapore", Population: 5900},
		{Name: "Bangkok", Population: 11000, Codes: []Code{airport("BKK")}},
		{Name: "Bali", Population: 4300, Codes: []Code{airport("DPS")}},
		{Name: "Maldives", Population: 520},
		{Name: "London", Population: 9600, Codes: []Code{airport("LHR")}},
		{Name: "Paris", Population: 11200, Codes: []Code{airport("CDG")}},
		{Name: "New York", Population: 18900, Aliases: []string{"New York City", "NYC"}, Codes: []Code{airport("JFK")}},
		{Name: "Kuala Lumpur", Population: 8600, Codes: []Code{airport("KUL")}},
		{Name: "Colombo", Population: 650, Codes: []Code{airport("CMB")}},
		{Name: "Kathmandu", Population: 1500, Codes: []Code{airport("KTM")}},
		{Name: "Tokyo", Population: 37000, Codes: []Code{airport("HND")}},
		{Name: "Sydney", Population: 5300, Codes: []Code{airport("SYD")}},
	}
}
