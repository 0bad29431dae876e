package deployservice

import "context"

// SiteRegistry is the part of the site registry the pipeline writes to.
type SiteRegistry interface {
	Upsert(ctx context.Context, domain, status string) error
}

// DeployLogger is the append-only deploy history. Append must not fail the
// caller.
type DeployLogger interface {
	Append(ctx context.Context, domain, status, message string)
}

type PipelineParams struct {
	SitesRoot string // parent of the per-domain document roots
	VhostDir  string // destination of <domain>.conf files
	Sites     SiteRegistry
	Logs      DeployLogger
}
