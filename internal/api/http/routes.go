package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-station-grabber/internal/geo"
	"github.com/i474232898/weather-station-grabber/internal/store"
	"github.com/i474232898/weather-station-grabber/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. geocoder may be
// nil, in which case city/country queries are rejected.
func RegisterRoutes(app *fiber.App, service *weather.Service, geocoder geo.Geocoder) {
	h := &handlers{service: service, geocoder: geocoder}

	app.Post("/", h.postSite)

	v1 := app.Group("/api/v1")
	v1.Get("/observations", h.getObservations)
	v1.Get("/stations", h.getStations)
	v1.Get("/stations/nearest", h.getNearest)
	v1.Get("/stations/:id", h.getStation)
}

type handlers struct {
	service  *weather.Service
	geocoder geo.Geocoder
}

// siteRequest is the form or JSON body accepted on POST /.
type siteRequest struct {
	Site string `json:"site" form:"site" validate:"required"`
	Raw  bool   `json:"raw" form:"raw"`
	N    int    `json:"n" form:"n"`
	Sep  string `json:"sep" form:"sep"`
}

func (h *handlers) postSite(c *fiber.Ctx) error {
	var req siteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected form or JSON body with a site field")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	q, err := weather.NewNameQuery(req.Site)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res := h.service.Grab(c.UserContext(), q, defaultN(req.N))
	if req.Raw {
		return c.JSON(res)
	}
	return c.SendString(render(res, req.Sep))
}

// observationQuery holds query parameters for the observations endpoint.
type observationQuery struct {
	Name    string
	Lat     string
	Lon     string
	City    string
	Country string
	N       int
	Format  string `validate:"omitempty,oneof=json text"`
	Sep     string
}

func (h *handlers) getObservations(c *fiber.Ctx) error {
	req := observationQuery{
		Name:    c.Query("name"),
		Lat:     c.Query("lat"),
		Lon:     c.Query("lon"),
		City:    c.Query("city"),
		Country: c.Query("country"),
		N:       c.QueryInt("n", 1),
		Format:  c.Query("format"),
		Sep:     c.Query("sep"),
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	q, err := h.buildQuery(c, req)
	if err != nil {
		return err
	}

	res := h.service.Grab(c.UserContext(), q, req.N)
	if req.Format == "text" {
		return c.SendString(render(res, req.Sep))
	}
	return c.JSON(res)
}

func (h *handlers) buildQuery(c *fiber.Ctx, req observationQuery) (weather.Query, error) {
	switch {
	case strings.TrimSpace(req.Name) != "":
		q, err := weather.NewNameQuery(req.Name)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return q, nil

	case req.Lat != "" || req.Lon != "":
		return parseCoordinateQuery(req.Lat, req.Lon)

	case req.City != "":
		if h.geocoder == nil {
			return nil, fiber.NewError(fiber.StatusNotImplemented, geo.ErrDisabled.Error())
		}
		lat, lon, err := h.geocoder.Geocode(c.UserContext(), req.City, req.Country)
		if err != nil {
			if errors.Is(err, geo.ErrDisabled) {
				return nil, fiber.NewError(fiber.StatusNotImplemented, err.Error())
			}
			return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		q, err := weather.NewCoordinateQuery(lat, lon)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadGateway, "geocoder returned an invalid coordinate")
		}
		return q, nil

	default:
		return nil, fiber.NewError(fiber.StatusBadRequest, "one of name, lat/lon or city is required")
	}
}

func (h *handlers) getStations(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	dir := h.service.Directory()

	var stations []weather.Station
	if name == "" {
		stations = dir.Stations()
	} else {
		for _, id := range weather.LocateByName(dir, name) {
			st, _ := dir.Station(id)
			stations = append(stations, st)
		}
	}
	if stations == nil {
		stations = []weather.Station{}
	}

	return c.JSON(fiber.Map{
		"count":    len(stations),
		"stations": stations,
	})
}

func (h *handlers) getStation(c *fiber.Ctx) error {
	st, err := h.service.Station(c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (h *handlers) getNearest(c *fiber.Ctx) error {
	q, err := parseCoordinateQuery(c.Query("lat"), c.Query("lon"))
	if err != nil {
		return err
	}
	point := q.(weather.ByCoordinate).Coordinate()

	ranked := h.service.Nearest(point, c.QueryInt("n", weather.MaxResults))
	if ranked == nil {
		ranked = []weather.Ranked{}
	}
	return c.JSON(fiber.Map{
		"query":    point,
		"stations": ranked,
	})
}

func parseCoordinateQuery(latStr, lonStr string) (weather.Query, error) {
	if latStr == "" || lonStr == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "lat and lon must be given together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid lon")
	}
	q, err := weather.NewCoordinateQuery(lat, lon)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return q, nil
}

// render stringifies every record of res, one per line.
func render(res weather.Result, sep string) string {
	if res.Single || len(res.Records) == 0 {
		rec := res.First()
		return weather.Stringify(&rec, sep)
	}
	lines := make([]string, 0, len(res.Records))
	for i := range res.Records {
		lines = append(lines, weather.Stringify(&res.Records[i], sep))
	}
	return strings.Join(lines, "\n")
}

func defaultN(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
