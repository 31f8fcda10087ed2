package cluster

// ReferenceCenter is a fixed, named attraction point for nearest-center
// assignment. List order is the deterministic tie-break: when two centers
// are equidistant from a point, the earlier one wins.
type ReferenceCenter struct {
	Name string
	Lat  float64
	Lon  float64
}

// PrimaryCenters is the metro-tier center list: the largest US metro areas.
var PrimaryCenters = []ReferenceCenter{
	{"New York", 40.7128, -74.0060},
	{"Los Angeles", 34.0522, -118.2437},
	{"Chicago", 41.8781, -87.6298},
	{"Houston", 29.7604, -95.3698},
	{"Phoenix", 33.4484, -112.0740},
	{"Philadelphia", 39.9526, -75.1652},
	{"San Antonio", 29.4241, -98.4936},
	{"Dallas", 32.7767, -96.7970},
	{"Miami", 25.7617, -80.1918},
	{"Atlanta", 33.7490, -84.3880},
	{"Boston", 42.3601, -71.0589},
	{"Seattle", 47.6062, -122.3321},
	{"Denver", 39.7392, -104.9903},
	{"Minneapolis", 44.9778, -93.2650},
	{"Detroit", 42.3314, -83.0458},
	{"Tampa", 27.9506, -82.4572},
	{"St. Louis", 38.6270, -90.1994},
	{"Charlotte", 35.2271, -80.8431},
	{"Portland", 45.5152, -122.6784},
	{"San Francisco", 37.7749, -122.4194},
	{"Salt Lake City", 40.7608, -111.8910},
	{"Kansas City", 39.0997, -94.5786},
	{"New Orleans", 29.9511, -90.0715},
	{"Nashville", 36.1627, -86.7816},
	{"Oklahoma City", 35.4676, -97.5164},
}

// SecondaryCenters extends the primary list for the MSA tier, where the
// smaller assignment radius needs denser coverage.
var SecondaryCenters = []ReferenceCenter{
	{"Sacramento", 38.5816, -121.4944},
	{"Las Vegas", 36.1699, -115.1398},
	{"San Diego", 32.7157, -117.1611},
	{"Austin", 30.2672, -97.7431},
	{"Raleigh", 35.7796, -78.6382},
	{"Richmond", 37.5407, -77.4360},
	{"Pittsburgh", 40.4406, -79.9959},
	{"Cleveland", 41.4993, -81.6944},
	{"Cincinnati", 39.1031, -84.5120},
	{"Columbus", 39.9612, -82.9988},
	{"Indianapolis", 39.7684, -86.1581},
	{"Milwaukee", 43.0389, -87.9065},
	{"Memphis", 35.1495, -90.0490},
	{"Louisville", 38.2527, -85.7585},
	{"Birmingham", 33.5186, -86.8104},
	{"Jacksonville", 30.3322, -81.6557},
	{"Orlando", 28.5384, -81.3789},
	{"Buffalo", 42.8864, -78.8784},
	{"Albuquerque", 35.0844, -106.6504},
	{"Tucson", 32.2226, -110.9747},
	{"El Paso", 31.7619, -106.4850},
	{"Omaha", 41.2565, -95.9345},
	{"Des Moines", 41.5868, -93.6250},
	{"Boise", 43.6150, -116.2023},
	{"Spokane", 47.6588, -117.4260},
	{"Billings", 45.7833, -108.5007},
	{"Fargo", 46.8772, -96.7898},
	{"Sioux Falls", 43.5446, -96.7311},
	{"Little Rock", 34.7465, -92.2896},
	{"Jackson", 32.2988, -90.1848},
	{"Charleston", 32.7765, -79.9311},
	{"Anchorage", 61.2181, -149.9003},
	{"Honolulu", 21.3099, -157.8581},
	{"San Juan", 18.4655, -66.1057},
}

// MSACenters returns the combined primary and secondary list, primaries
// first so the tie-break order stays stable across tiers.
func MSACenters() []ReferenceCenter {
	out := make([]ReferenceCenter, 0, len(PrimaryCenters)+len(SecondaryCenters))
	out = append(out, PrimaryCenters...)
	out = append(out, SecondaryCenters...)
	return out
}
