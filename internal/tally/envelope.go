package tally

import (
	"fmt"
	"strings"
	"time"

	"github.com/aclindsa/xml"
)

// DateFormat is the date layout Tally expects in static variables.
const DateFormat = "2-Jan-2006"

// FormatDate renders a time in the D-Mon-YYYY format Tally expects.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// collectionRequest is the TYPE=Collection envelope shape. A TDL COLLECTION
// block names a Tally object type and the fields to fetch.
type collectionRequest struct {
	XMLName      xml.Name   `xml:"ENVELOPE"`
	Version      int        `xml:"HEADER>VERSION"`
	TallyRequest string     `xml:"HEADER>TALLYREQUEST"`
	Type         string     `xml:"HEADER>TYPE"`
	ID           string     `xml:"HEADER>ID"`
	Company      string     `xml:"BODY>DESC>STATICVARIABLES>SVCOMPANYCONNECT,omitempty"`
	Collection   collection `xml:"BODY>DESC>TDL>TDLMESSAGE>COLLECTION"`
}

type collection struct {
	Name  string `xml:"NAME,attr"`
	Type  string `xml:"TYPE"`
	Fetch string `xml:"FETCH"`
}

// exportRequest is the TYPE=Export Data envelope shape, naming a built-in
// report and the static variables that scope it.
type exportRequest struct {
	XMLName      xml.Name `xml:"ENVELOPE"`
	TallyRequest string   `xml:"HEADER>TALLYREQUEST"`
	ReportName   string   `xml:"BODY>EXPORTDATA>REQUESTDESC>REPORTNAME"`
	ExportFormat string   `xml:"BODY>EXPORTDATA>REQUESTDESC>STATICVARIABLES>SVEXPORTFORMAT"`
	Company      string   `xml:"BODY>EXPORTDATA>REQUESTDESC>STATICVARIABLES>SVCURRENTCOMPANY,omitempty"`
	FromDate     *dateVar `xml:"BODY>EXPORTDATA>REQUESTDESC>STATICVARIABLES>SVFROMDATE,omitempty"`
	ToDate       *dateVar `xml:"BODY>EXPORTDATA>REQUESTDESC>STATICVARIABLES>SVTODATE,omitempty"`
}

type dateVar struct {
	Type  string `xml:"Type,attr"`
	Value string `xml:",chardata"`
}

// CollectionRequest builds a TYPE=Collection envelope. company may be empty
// for object types that are not scoped to a company, like the company list
// itself.
func CollectionRequest(id, objectType string, fetch []string, company string) (string, error) {
	req := collectionRequest{
		Version:      1,
		TallyRequest: "Export",
		Type:         "Collection",
		ID:           id,
		Company:      company,
		Collection: collection{
			Name:  id,
			Type:  objectType,
			Fetch: strings.Join(fetch, ","),
		},
	}

	return marshalEnvelope(req)
}

// ExportRequest builds a TYPE=Export Data envelope for a built-in report.
// Zero from/to times omit the date window.
func ExportRequest(report, company string, from, to time.Time) (string, error) {
	req := exportRequest{
		TallyRequest: "Export Data",
		ReportName:   report,
		ExportFormat: "$$SysName:XML",
		Company:      company,
	}

	if !from.IsZero() {
		req.FromDate = &dateVar{Type: "Date", Value: FormatDate(from)}
	}

	if !to.IsZero() {
		req.ToDate = &dateVar{Type: "Date", Value: FormatDate(to)}
	}

	return marshalEnvelope(req)
}

func marshalEnvelope(req any) (string, error) {
	body, err := xml.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not build request envelope: %w", err)
	}

	return string(body), nil
}
