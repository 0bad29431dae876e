package deployservice

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"site-panel/internal/metrics"
	"site-panel/internal/models"

	"go.uber.org/zap"
)

// ErrDeployFailed is what callers see for any pipeline failure. The detail
// goes to the deploy log and the server log, never to the client.
var ErrDeployFailed = errors.New("deploy failed")

// Pipeline turns an uploaded zip into a served directory plus an nginx
// virtual host, then records the outcome.
//
// Nothing is rolled back: a failure after extraction leaves the new files on
// disk without a registry update. Two deploys of the same domain at once are
// not serialised and the last writer wins.
type Pipeline struct {
	sitesRoot string
	vhostDir  string
	sites     SiteRegistry
	logs      DeployLogger
	log       *zap.SugaredLogger
}

// NewPipeline resolves both roots to absolute paths so generated configs
// never depend on the server's working directory.
func NewPipeline(params PipelineParams, log *zap.SugaredLogger) (*Pipeline, error) {
	sitesRoot, err := filepath.Abs(params.SitesRoot)
	if err != nil {
		return nil, err
	}
	vhostDir, err := filepath.Abs(params.VhostDir)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		sitesRoot: sitesRoot,
		vhostDir:  vhostDir,
		sites:     params.Sites,
		logs:      params.Logs,
		log:       log,
	}, nil
}

// SitePath is the document root of domain.
func (p *Pipeline) SitePath(domain string) string {
	return filepath.Join(p.sitesRoot, domain)
}

// VhostPath is the generated config file of domain.
func (p *Pipeline) VhostPath(domain string) string {
	return filepath.Join(p.vhostDir, domain+".conf")
}

// Deploy publishes archive for domain. It returns ErrInvalidDomain without
// touching disk or logs when the domain is not a plain hostname, and an
// error wrapping ErrDeployFailed when any later step fails.
func (p *Pipeline) Deploy(ctx context.Context, domain string, archive io.Reader) error {
	domain = NormalizeDomain(domain)
	if err := ValidateDomain(domain); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		metrics.DeployDuration.Observe(time.Since(start).Seconds())
	}()

	if err := p.publish(domain, archive); err != nil {
		return p.fail(ctx, domain, err)
	}

	if err := p.sites.Upsert(ctx, domain, models.SiteStatusActive); err != nil {
		return p.fail(ctx, domain, fmt.Errorf("update site registry: %w", err))
	}

	p.logs.Append(ctx, domain, models.DeployStatusSuccess, "")
	metrics.DeploysTotal.WithLabelValues(models.DeployStatusSuccess).Inc()
	p.log.Infow("deploy succeeded", "domain", domain, "duration", time.Since(start))

	return nil
}

// publish runs the filesystem steps. The staged upload is opened as a zip
// before anything is cleared, so a corrupt upload leaves the live site alone.
func (p *Pipeline) publish(domain string, archive io.Reader) error {
	sitePath := p.SitePath(domain)

	zipPath, err := stageArchive(sitePath, archive)
	if err != nil {
		return err
	}
	defer os.Remove(zipPath)

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := clearExcept(sitePath, filepath.Base(zipPath)); err != nil {
		return err
	}

	if err := extractZip(&r.Reader, sitePath, zipPath); err != nil {
		return err
	}

	if _, err := writeVhost(p.vhostDir, domain, sitePath); err != nil {
		return err
	}

	return nil
}

func (p *Pipeline) fail(ctx context.Context, domain string, cause error) error {
	p.log.Errorw("deploy failed", "domain", domain, "err", cause)
	p.logs.Append(ctx, domain, models.DeployStatusFailure, cause.Error())
	metrics.DeploysTotal.WithLabelValues(models.DeployStatusFailure).Inc()

	return fmt.Errorf("%w: %v", ErrDeployFailed, cause)
}
