package appstore

import "time"

// Wire types for the JSON:API subset this engine consumes. Responses wrap
// resources in a "data" envelope; relationship writes post linkage objects.

type appAttributes struct {
	BundleID string `json:"bundleId"`
	Name     string `json:"name"`
	SKU      string `json:"sku,omitempty"`
}

type appResource struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	Attributes appAttributes `json:"attributes"`
}

type appListResponse struct {
	Data []appResource `json:"data"`
}

type buildAttributes struct {
	Version         string    `json:"version"`
	BuildNumber     string    `json:"buildNumber"`
	ProcessingState string    `json:"processingState"`
	UploadedDate    time.Time `json:"uploadedDate"`
}

type buildResource struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes buildAttributes `json:"attributes"`
}

type buildListResponse struct {
	Data []buildResource `json:"data"`
}

type buildResponse struct {
	Data buildResource `json:"data"`
}

type testerAttributes struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	State     string `json:"state,omitempty"`
}

type testerResource struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Attributes testerAttributes `json:"attributes"`
}

type testerListResponse struct {
	Data []testerResource `json:"data"`
}

type testerResponse struct {
	Data testerResource `json:"data"`
}

type createTesterRequest struct {
	Data createTesterData `json:"data"`
}

type createTesterData struct {
	Type       string           `json:"type"`
	Attributes testerAttributes `json:"attributes"`
}

// linkage identifies a resource in a relationship write.
type linkage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type appRelationshipRequest struct {
	Data linkage `json:"data"`
}

type testerRelationshipRequest struct {
	Data []linkage `json:"data"`
}

type linkageListResponse struct {
	Data []linkage `json:"data"`
}
