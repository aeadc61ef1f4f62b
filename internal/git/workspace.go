package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/hashicorp/go-hclog"

	"github.com/revio-dev/revio/pkg/shared/config"
	sharederrors "github.com/revio-dev/revio/pkg/shared/errors"
	"github.com/revio-dev/revio/pkg/shared/files"
	log "github.com/revio-dev/revio/pkg/shared/logger"
)

// Workspace is a disposable working copy of a repository, checked out at a
// specific revision for the duration of one job.
type Workspace struct {
	Path   string
	logger hclog.Logger
}

// Acquire clones repoLoc (a local path or clone URL) into the repos folder
// under a job-scoped directory and checks out headRev. All failures are
// FatalRepositoryErrors: without a working copy there is no job to run.
func Acquire(ctx context.Context, cfg *config.Config, logger hclog.Logger, repoLoc, headRev, jobID string) (*Workspace, error) {
	if err := files.CreateFolderIfNotExists(cfg.Revio.ReposFolder); err != nil {
		return nil, sharederrors.NewFatalRepositoryError("prepare repos folder", cfg.Revio.ReposFolder, err)
	}

	target := filepath.Join(cfg.Revio.ReposFolder, fmt.Sprintf("%s_%s", jobID, workspaceName(repoLoc)))
	if err := files.RemoveAndRecreate(target); err != nil {
		return nil, sharederrors.NewFatalRepositoryError("prepare target folder", target, err)
	}

	timeout := config.SetThen(cfg.GitClient.Timeout, 10*time.Minute)
	cloneCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Debug("cloning repository", "location", repoLoc, "targetFolder", target)
	repo, err := git.PlainCloneContext(cloneCtx, target, false, &git.CloneOptions{
		URL:      repoLoc,
		Auth:     cloneAuth(cfg, repoLoc),
		Progress: log.GetLoggerOutput(logger),
	})
	if err != nil {
		return nil, sharederrors.NewFatalRepositoryError("clone", repoLoc, err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(headRev))
	if err != nil {
		return nil, sharederrors.NewFatalRepositoryError("resolve head", headRev, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, sharederrors.NewFatalRepositoryError("worktree", target, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return nil, sharederrors.NewFatalRepositoryError("checkout", headRev, err)
	}

	logger.Info("working copy ready", "path", target, "head", hash.String())
	return &Workspace{Path: target, logger: logger}, nil
}

// Release removes the working copy. It is safe to call on a nil workspace,
// or one built without a logger, and must run regardless of the job outcome.
func (w *Workspace) Release() {
	if w == nil || w.Path == "" {
		return
	}
	lg := w.logger
	if lg == nil {
		lg = hclog.NewNullLogger()
	}
	if err := os.RemoveAll(w.Path); err != nil {
		lg.Error("failed to remove working copy", "path", w.Path, "error", err)
		return
	}
	lg.Debug("working copy released", "path", w.Path)
}

// cloneAuth returns token auth for remote HTTP locations when a token is
// configured; local paths never need credentials.
func cloneAuth(cfg *config.Config, repoLoc string) transport.AuthMethod {
	if cfg.GitClient.Token == "" || !strings.HasPrefix(repoLoc, "http") {
		return nil
	}
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: cfg.GitClient.Token,
	}
}

// workspaceName derives a folder-friendly name for the repository.
func workspaceName(repoLoc string) string {
	if info, err := vcsurl.Parse(repoLoc); err == nil && info.Name != "" {
		return info.Name
	}
	name := filepath.Base(strings.TrimSuffix(repoLoc, ".git"))
	return strings.Map(func(r rune) rune {
		if r == os.PathSeparator || r == ':' {
			return '_'
		}
		return r
	}, name)
}
