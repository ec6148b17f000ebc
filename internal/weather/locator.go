package weather

import (
	"math"
	"sort"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// LocateByName returns the ids of every station whose display name equals
// name exactly, in directory order. One name may belong to several stations
// run by different networks.
func LocateByName(dir *Directory, name string) []string {
	if dir == nil {
		return nil
	}
	var ids []string
	for _, id := range dir.order {
		if dir.byID[id].Name == name {
			ids = append(ids, id)
		}
	}
	return ids
}

// Ranked is a station together with its distance from a query point.
type Ranked struct {
	Station    Station `json:"station"`
	DistanceKm float64 `json:"distanceKm"`
}

// RankNearest orders the directory by distance from c and keeps at most n
// entries. Equal distances keep directory order, which callers must not rely on.
func RankNearest(dir *Directory, c Coordinate, n int) []Ranked {
	if dir == nil || n <= 0 {
		return nil
	}
	ranked := make([]Ranked, 0, len(dir.order))
	for _, id := range dir.order {
		st := dir.byID[id]
		ranked = append(ranked, Ranked{Station: st, DistanceKm: Haversine(c, st.Coordinate)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// LocateNearest returns up to n station ids, nearest first.
func LocateNearest(dir *Directory, c Coordinate, n int) []string {
	ranked := RankNearest(dir, c, n)
	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Station.ID)
	}
	return ids
}
