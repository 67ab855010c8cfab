package openchargemap

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/station"
)

// normalizeAll maps raw response elements to Station records. Items
// that fail to decode, or that lack coordinates, are logged and
// skipped; the rest of the batch is unaffected.
func normalizeAll(rawItems []json.RawMessage, logger zerolog.Logger) []*station.Station {
	stations := make([]*station.Station, 0, len(rawItems))

	for i, raw := range rawItems {
		var item poi
		if err := json.Unmarshal(raw, &item); err != nil {
			logger.Warn().
				Err(err).
				Int("index", i).
				Msg("skipping malformed station entry")
			continue
		}

		st, ok := normalize(&item)
		if !ok {
			logger.Warn().
				Int64("poi_id", item.ID).
				Msg("skipping station without coordinates")
			continue
		}
		stations = append(stations, st)
	}

	return stations
}

// normalize converts one raw POI into a Station. Returns false when the
// item lacks latitude or longitude; every other absent field gets a
// defined default instead of excluding the record.
func normalize(item *poi) (*station.Station, bool) {
	addr := item.AddressInfo
	if addr == nil || addr.Latitude == nil || addr.Longitude == nil {
		return nil, false
	}

	st := &station.Station{
		ID:                 item.ID,
		Latitude:           *addr.Latitude,
		Longitude:          *addr.Longitude,
		Name:               stringOr(addr.Title, "Unknown Station"),
		Address:            buildAddress(addr),
		Operator:           titleOr(item.OperatorInfo, station.Unknown),
		Status:             titleOr(item.StatusType, station.Unknown),
		AccessType:         titleOr(item.UsageType, station.Unknown),
		VerificationStatus: titleOr(item.SubmissionStatus, station.Unknown),
		Distance:           addr.Distance,
		NumPoints:          intOr(item.NumberOfPoints, 0),
		Cost:               stringOr(item.UsageCost, station.Unknown),
		Phone:              stringOr(addr.ContactTelephone1, ""),
		Email:              stringOr(addr.ContactEmail, ""),
		URL:                stringOr(addr.RelatedURL, ""),
		Comments:           stringOr(item.GeneralComments, ""),
		DateCreated:        stringOr(item.DateCreated, ""),
		DateLastVerified:   stringOr(item.DateLastVerified, ""),
	}

	st.Connections = normalizeConnections(item.Connections)
	st.ConnectionTypes = distinctTitles(item.Connections, func(c *rawConnection) *titledRef { return c.ConnectionType })
	st.PowerLevels = distinctTitles(item.Connections, func(c *rawConnection) *titledRef { return c.Level })

	return st, true
}

// buildAddress joins the non-empty address sub-fields with ", ".
func buildAddress(addr *addressInfo) string {
	var parts []string
	for _, p := range []*string{addr.AddressLine1, addr.Town, addr.StateOrProvince, addr.Postcode} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if addr.Country != nil && addr.Country.Title != nil && *addr.Country.Title != "" {
		parts = append(parts, *addr.Country.Title)
	}
	if len(parts) == 0 {
		return "Unknown Address"
	}
	return strings.Join(parts, ", ")
}

func normalizeConnections(raw []rawConnection) []station.Connection {
	if len(raw) == 0 {
		return nil
	}

	conns := make([]station.Connection, 0, len(raw))
	for i := range raw {
		rc := &raw[i]
		conns = append(conns, station.Connection{
			ID:          rc.ID,
			Type:        titleOr(rc.ConnectionType, station.Unknown),
			Level:       titleOr(rc.Level, station.Unknown),
			PowerKW:     rc.PowerKW,
			CurrentType: titleOr(rc.CurrentType, station.Unknown),
			Quantity:    intOr(rc.Quantity, 1),
			Status:      titleOr(rc.StatusType, station.Unknown),
			Comments:    stringOr(rc.Comments, ""),
		})
	}
	return conns
}

// distinctTitles collects the sorted distinct titles of a nested
// reference across all connections. Absent references contribute
// nothing, so a station whose connections all lack the reference yields
// an empty set.
func distinctTitles(raw []rawConnection, pick func(*rawConnection) *titledRef) []string {
	seen := make(map[string]struct{})
	for i := range raw {
		ref := pick(&raw[i])
		if ref == nil || ref.Title == nil || *ref.Title == "" {
			continue
		}
		seen[*ref.Title] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}

	titles := make([]string, 0, len(seen))
	for t := range seen {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

func stringOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

func titleOr(ref *titledRef, def string) string {
	if ref == nil || ref.Title == nil || *ref.Title == "" {
		return def
	}
	return *ref.Title
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
