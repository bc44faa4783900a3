package config

// Lookups bundles the static resolution tables injected into the normalizer.
// They are constant maps, not ambient globals, so the normalizer stays pure
// and testable with alternative tables.
type Lookups struct {
	// AirlineNames resolves an IATA carrier designator to the airline's
	// display name. Unresolved codes pass through verbatim.
	AirlineNames map[string]string

	// CityCodes resolves a lowercase destination city name to its IATA
	// location code. Unresolved destinations keep the free-text city name
	// and omit the code.
	CityCodes map[string]string
}

// DefaultLookups returns the tables shipped with the generator, covering the
// carriers and destinations commonly seen at GRU.
func DefaultLookups() Lookups {
	return Lookups{
		AirlineNames: map[string]string{
			// Brazilian carriers
			"G3": "GOL",
			"AD": "AZUL",
			"LA": "LATAM",
			"JJ": "LATAM",
			"2Z": "Voepass",
			"O6": "Avianca Brasil",

			// Europe
			"AF": "Air France",
			"KL": "KLM",
			"LH": "Lufthansa",
			"BA": "British Airways",
			"IB": "Iberia",
			"TP": "TAP Portugal",
			"AZ": "ITA Airways",
			"LX": "Swiss",
			"OS": "Austrian Airlines",
			"SN": "Brussels Airlines",

			// Americas
			"AR": "Aerolíneas Argentinas",
			"4M": "LATAM Argentina",
			"CM": "Copa Airlines",
			"AV": "Avianca",
			"AA": "American Airlines",
			"DL": "Delta",
			"UA": "United Airlines",
			"AC": "Air Canada",
			"AM": "Aeroméxico",

			// Others
			"EK": "Emirates",
			"QR": "Qatar Airways",
			"TK": "Turkish Airlines",
			"ET": "Ethiopian Airlines",
			"SA": "South African Airways",
		},
		CityCodes: map[string]string{
			// Europe
			"paris":     "CDG",
			"lisboa":    "LIS",
			"madrid":    "MAD",
			"londres":   "LHR",
			"frankfurt": "FRA",
			"roma":      "FCO",
			"barcelona": "BCN",
			"amsterdã":  "AMS",
			"amsterdam": "AMS",
			"zurique":   "ZRH",
			"milão":     "MXP",
			"milao":     "MXP",

			// South America
			"buenos aires": "EZE",
			"santiago":     "SCL",
			"lima":         "LIM",
			"bogotá":       "BOG",
			"bogota":       "BOG",
			"montevideo":   "MVD",
			"montevidéu":   "MVD",

			// North America
			"miami":            "MIA",
			"nova york":        "JFK",
			"new york":         "JFK",
			"orlando":          "MCO",
			"los angeles":      "LAX",
			"toronto":          "YYZ",
			"cidade do méxico": "MEX",
			"mexico city":      "MEX",
			"panamá":           "PTY",
			"panama":           "PTY",

			// Domestic trunk routes out of GRU
			"rio de janeiro": "GIG",
			"brasília":       "BSB",
			"brasilia":       "BSB",
			"belo horizonte": "CNF",
			"salvador":       "SSA",
			"fortaleza":      "FOR",
			"recife":         "REC",
			"porto alegre":   "POA",
			"curitiba":       "CWB",
			"florianópolis":  "FLN",
			"florianopolis":  "FLN",
			"goiânia":        "GYN",
			"goiania":        "GYN",
			"cuiabá":         "CGB",
			"cuiaba":         "CGB",
			"manaus":         "MAO",
			"belém":          "BEL",
			"belem":          "BEL",
			"natal":          "NAT",
			"maceió":         "MCZ",
			"maceio":         "MCZ",
		},
	}
}
