package jurisdiction

// Static province/district gazetteer. Registration forms constrain district
// input to this table; the lower four levels are free text.

var provinceOrder = []string{
	"Central",
	"Copperbelt",
	"Eastern",
	"Luapula",
	"Lusaka",
	"Muchinga",
	"Northern",
	"North-Western",
	"Southern",
	"Western",
}

var districtsByProvince = map[string][]string{
	"Central": {
		"Chibombo", "Chisamba", "Chitambo", "Kabwe", "Kapiri Mposhi",
		"Luano", "Mkushi", "Mumbwa", "Ngabwe", "Serenje", "Shibuyunji",
	},
	"Copperbelt": {
		"Chililabombwe", "Chingola", "Kalulushi", "Kitwe", "Luanshya",
		"Lufwanyama", "Masaiti", "Mpongwe", "Mufulira", "Ndola",
	},
	"Eastern": {
		"Chadiza", "Chasefu", "Chipangali", "Chipata", "Kasenengwa",
		"Katete", "Lumezi", "Lundazi", "Mambwe", "Nyimba", "Petauke",
		"Sinda", "Vubwi",
	},
	"Luapula": {
		"Chembe", "Chiengi", "Chifunabuli", "Chipili", "Kawambwa",
		"Lunga", "Mansa", "Milenge", "Mwansabombwe", "Mwense",
		"Nchelenge", "Samfya",
	},
	"Lusaka": {
		"Chilanga", "Chongwe", "Kafue", "Luangwa", "Lusaka", "Rufunsa",
	},
	"Muchinga": {
		"Chama", "Chinsali", "Isoka", "Kanchibiya", "Lavushimanda",
		"Mafinga", "Mpika", "Nakonde", "Shiwang'andu",
	},
	"Northern": {
		"Chilubi", "Kaputa", "Kasama", "Lupososhi", "Luwingu", "Mbala",
		"Mporokoso", "Mpulungu", "Mungwi", "Nsama", "Senga Hill",
	},
	"North-Western": {
		"Chavuma", "Ikelenge", "Kabompo", "Kalumbila", "Kasempa",
		"Manyinga", "Mufumbwe", "Mushindamo", "Mwinilunga", "Solwezi",
		"Zambezi",
	},
	"Southern": {
		"Chikankata", "Chirundu", "Choma", "Gwembe", "Itezhi-Tezhi",
		"Kalomo", "Kazungula", "Livingstone", "Mazabuka", "Monze",
		"Namwala", "Pemba", "Siavonga", "Sinazongwe", "Zimba",
	},
	"Western": {
		"Kalabo", "Kaoma", "Limulunga", "Luampa", "Lukulu", "Mitete",
		"Mongu", "Mulobezi", "Mwandi", "Nalolo", "Nkeyema", "Senanga",
		"Sesheke", "Shangombo", "Sikongo", "Sioma",
	},
}

// Provinces returns the ten provinces in display order.
func Provinces() []string {
	out := make([]string, len(provinceOrder))
	copy(out, provinceOrder)
	return out
}

// DistrictsFor returns the ordered district list for a province, or an empty
// slice when the province is not in the table.
func DistrictsFor(province string) []string {
	districts, ok := districtsByProvince[province]
	if !ok {
		return []string{}
	}
	out := make([]string, len(districts))
	copy(out, districts)
	return out
}

// Coordinates is an approximate provincial reference point (the provincial
// capital) used by the live registration map.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

var provinceCoordinates = map[string]Coordinates{
	"Central":       {Lat: -14.4469, Lon: 28.4464}, // Kabwe
	"Copperbelt":    {Lat: -12.9587, Lon: 28.6366}, // Ndola
	"Eastern":       {Lat: -13.6333, Lon: 32.6500}, // Chipata
	"Luapula":       {Lat: -11.1996, Lon: 28.8943}, // Mansa
	"Lusaka":        {Lat: -15.3875, Lon: 28.3228}, // Lusaka
	"Muchinga":      {Lat: -10.5414, Lon: 32.0640}, // Chinsali
	"Northern":      {Lat: -10.2129, Lon: 31.1808}, // Kasama
	"North-Western": {Lat: -12.1688, Lon: 26.3864}, // Solwezi
	"Southern":      {Lat: -16.8060, Lon: 26.9874}, // Choma
	"Western":       {Lat: -15.2484, Lon: 23.1274}, // Mongu
}

// CoordinatesFor maps a province to its reference point. The second return
// is false for provinces outside the table.
func CoordinatesFor(province string) (Coordinates, bool) {
	c, ok := provinceCoordinates[province]
	return c, ok
}
