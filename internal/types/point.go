// README: Geographic point shared by the pipeline and the restaurant lookup.
package types

type ID string

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
