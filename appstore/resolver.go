package appstore

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// Resolver looks up remote identifiers from stable external keys: bundle
// identifier to app, app identifier to its latest build.
type Resolver struct {
	client *Client
	log    *slog.Logger
}

// NewResolver creates a resolver on top of the given client.
func NewResolver(client *Client, log *slog.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

// AppByBundleID resolves the app matching the given bundle identifier.
// Returns a not-found APIError when no app matches.
func (r *Resolver) AppByBundleID(ctx context.Context, bundleID interfaces.BundleID) (*interfaces.App, error) {
	query := url.Values{}
	query.Set("filter[bundleId]", bundleID.String())
	query.Set("fields[apps]", "bundleId,name,sku")

	var resp appListResponse
	if err := r.client.Execute(ctx, http.MethodGet, "/apps", query, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &APIError{Kind: KindNotFound, Status: http.StatusNotFound, Detail: "no app found with bundle ID " + bundleID.String()}
	}

	app := &interfaces.App{
		ID:       resp.Data[0].ID,
		BundleID: interfaces.BundleID(resp.Data[0].Attributes.BundleID),
		Name:     resp.Data[0].Attributes.Name,
	}
	r.log.Info("Resolved app",
		slog.String("name", app.Name),
		slog.String("appID", app.ID),
		slog.String("bundleID", app.BundleID.String()))
	return app, nil
}

// LatestBuild resolves the most recently uploaded build for the app. The
// remote system pre-sorts descending by upload date; the first entry wins.
// Returns a not-found APIError when the app has no builds.
func (r *Resolver) LatestBuild(ctx context.Context, appID string) (*interfaces.Build, error) {
	query := url.Values{}
	query.Set("filter[app]", appID)
	query.Set("sort", "-uploadedDate")
	query.Set("limit", "1")
	query.Set("fields[builds]", "version,buildNumber,processingState,uploadedDate")

	var resp buildListResponse
	if err := r.client.Execute(ctx, http.MethodGet, "/builds", query, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &APIError{Kind: KindNotFound, Status: http.StatusNotFound, Detail: "no builds found for app " + appID}
	}

	build := buildFromResource(resp.Data[0])
	r.log.Info("Resolved latest build",
		slog.String("version", build.Version),
		slog.String("buildNumber", build.BuildNumber),
		slog.String("state", string(build.ProcessingState)))
	return build, nil
}

// BuildByID fetches a specific build.
func (r *Resolver) BuildByID(ctx context.Context, buildID string) (*interfaces.Build, error) {
	var resp buildResponse
	if err := r.client.Execute(ctx, http.MethodGet, "/builds/"+buildID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return buildFromResource(resp.Data), nil
}

func buildFromResource(res buildResource) *interfaces.Build {
	return &interfaces.Build{
		ID:              res.ID,
		Version:         res.Attributes.Version,
		BuildNumber:     res.Attributes.BuildNumber,
		ProcessingState: interfaces.ProcessingState(res.Attributes.ProcessingState),
		UploadedDate:    res.Attributes.UploadedDate,
	}
}
