package openchargemap

// Wire schema for the OpenChargeMap /poi endpoint. Optional fields are
// pointers so the normalizer can tell "absent" from "zero".

// poi is one raw element of the response array.
type poi struct {
	ID               int64            `json:"ID"`
	AddressInfo      *addressInfo     `json:"AddressInfo"`
	OperatorInfo     *titledRef       `json:"OperatorInfo"`
	StatusType       *titledRef       `json:"StatusType"`
	UsageType        *titledRef       `json:"UsageType"`
	SubmissionStatus *titledRef       `json:"SubmissionStatus"`
	UsageCost        *string          `json:"UsageCost"`
	NumberOfPoints   *int             `json:"NumberOfPoints"`
	GeneralComments  *string          `json:"GeneralComments"`
	DateCreated      *string          `json:"DateCreated"`
	DateLastVerified *string          `json:"DateLastVerified"`
	Connections      []rawConnection  `json:"Connections"`
}

// addressInfo carries the nested location block.
type addressInfo struct {
	Title             *string    `json:"Title"`
	AddressLine1      *string    `json:"AddressLine1"`
	Town              *string    `json:"Town"`
	StateOrProvince   *string    `json:"StateOrProvince"`
	Postcode          *string    `json:"Postcode"`
	Country           *titledRef `json:"Country"`
	Latitude          *float64   `json:"Latitude"`
	Longitude         *float64   `json:"Longitude"`
	Distance          *float64   `json:"Distance"`
	ContactTelephone1 *string    `json:"ContactTelephone1"`
	ContactEmail      *string    `json:"ContactEmail"`
	RelatedURL        *string    `json:"RelatedURL"`
}

// titledRef is the common {ID, Title} reference shape used for
// operators, status types, usage types, countries, and levels.
type titledRef struct {
	ID    int64   `json:"ID"`
	Title *string `json:"Title"`
}

// rawConnection is one element of the Connections array.
type rawConnection struct {
	ID             int64      `json:"ID"`
	ConnectionType *titledRef `json:"ConnectionType"`
	Level          *titledRef `json:"Level"`
	PowerKW        *float64   `json:"PowerKW"`
	CurrentType    *titledRef `json:"CurrentType"`
	Quantity       *int       `json:"Quantity"`
	StatusType     *titledRef `json:"StatusType"`
	Comments       *string    `json:"Comments"`
}
