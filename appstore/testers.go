package appstore

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// LookupTester finds an existing beta tester by exact email match. Returns
// (nil, nil) when no tester exists for the address, whether the remote
// system reports that as an empty result list or as a 404; the caller
// proceeds to create either way.
func (c *Client) LookupTester(ctx context.Context, email interfaces.Email) (*interfaces.Tester, error) {
	query := url.Values{}
	query.Set("filter[email]", email.String())
	query.Set("fields[betaTesters]", "email,firstName,lastName")

	var resp testerListResponse
	if err := c.Execute(ctx, http.MethodGet, "/betaTesters", query, nil, &resp); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return testerFromResource(resp.Data[0]), nil
}

// CreateTester registers a new beta tester. The remote system assigns the
// tester identifier, which is immutable thereafter.
func (c *Client) CreateTester(ctx context.Context, email interfaces.Email, firstName, lastName string) (*interfaces.Tester, error) {
	body := createTesterRequest{
		Data: createTesterData{
			Type: "betaTesters",
			Attributes: testerAttributes{
				Email:     email.String(),
				FirstName: firstName,
				LastName:  lastName,
			},
		},
	}

	var resp testerResponse
	if err := c.Execute(ctx, http.MethodPost, "/betaTesters", nil, body, &resp); err != nil {
		return nil, err
	}
	c.log.Info("Created beta tester",
		slog.String("email", email.String()),
		slog.String("testerID", resp.Data.ID))
	return testerFromResource(resp.Data), nil
}

// AddTesterToApp creates the tester-to-app association edge. A conflict
// response means the edge already exists and is treated as success.
func (c *Client) AddTesterToApp(ctx context.Context, testerID, appID string) error {
	body := appRelationshipRequest{Data: linkage{Type: "apps", ID: appID}}

	err := c.Execute(ctx, http.MethodPost, "/betaTesters/"+testerID+"/relationships/apps", nil, body, nil)
	if IsConflict(err) {
		c.log.Debug("Tester already associated to app",
			slog.String("testerID", testerID),
			slog.String("appID", appID))
		return nil
	}
	return err
}

// AddTesterToBuild creates the tester-to-build association edge. A conflict
// response means the edge already exists and is treated as success.
func (c *Client) AddTesterToBuild(ctx context.Context, testerID, buildID string) error {
	body := testerRelationshipRequest{Data: []linkage{{Type: "betaTesters", ID: testerID}}}

	err := c.Execute(ctx, http.MethodPost, "/builds/"+buildID+"/relationships/individualTesters", nil, body, nil)
	if IsConflict(err) {
		c.log.Debug("Tester already associated to build",
			slog.String("testerID", testerID),
			slog.String("buildID", buildID))
		return nil
	}
	return err
}

// TesterApps lists the app identifiers a tester is associated with.
func (c *Client) TesterApps(ctx context.Context, testerID string) ([]string, error) {
	query := url.Values{}
	query.Set("fields[apps]", "bundleId")

	var resp linkageListResponse
	if err := c.Execute(ctx, http.MethodGet, "/betaTesters/"+testerID+"/apps", query, nil, &resp); err != nil {
		return nil, err
	}

	appIDs := make([]string, 0, len(resp.Data))
	for _, item := range resp.Data {
		appIDs = append(appIDs, item.ID)
	}
	return appIDs, nil
}

func testerFromResource(res testerResource) *interfaces.Tester {
	return &interfaces.Tester{
		ID:        res.ID,
		Email:     interfaces.Email(res.Attributes.Email),
		FirstName: res.Attributes.FirstName,
		LastName:  res.Attributes.LastName,
	}
}
