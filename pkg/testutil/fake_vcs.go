package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/vcs"
	"github.com/spf13/afero"
)

// fakeMarker is created in every fake working copy so directory scans see
// a hidden VCS directory like they would for git
const fakeMarker = ".git"

// FakeRevision is one snapshot of a fake repository's files
type FakeRevision struct {
	ID    string
	Files map[string]string
}

// FakeRemote is a repository that can be cloned by FakeVCS
type FakeRemote struct {
	URL       string
	Branch    string
	Revisions []FakeRevision
	Tags      map[string]string
}

// Head returns the latest revision of the default branch
func (r *FakeRemote) Head() FakeRevision {
	return r.Revisions[len(r.Revisions)-1]
}

// Tag points name at revision id
func (r *FakeRemote) Tag(name, id string) *FakeRemote {
	r.Tags[name] = id
	return r
}

// Commit appends a new head revision
func (r *FakeRemote) Commit(rev FakeRevision) *FakeRemote {
	r.Revisions = append(r.Revisions, rev)
	return r
}

func (r *FakeRemote) resolve(rev string) (FakeRevision, bool) {
	if rev == "" || rev == r.Branch {
		return r.Head(), true
	}
	if id, ok := r.Tags[rev]; ok {
		rev = id
	}
	for _, c := range r.Revisions {
		if c.ID == rev {
			return c, true
		}
	}
	return FakeRevision{}, false
}

type fakeCheckout struct {
	remoteURL string
	rev       FakeRevision
	branch    string
	dirty     bool
	outgoing  int
	tracked   map[string]bool
	ignored   []string
}

// FakeVCS implements vcs.Adapter in memory. Remotes are registered with
// AddRemote; working copies are materialized on FS with a .git marker.
type FakeVCS struct {
	FS      afero.Fs
	Calls   []string
	remotes []*FakeRemote
	copies  map[string]*fakeCheckout
	fail    map[string]error
}

var _ vcs.Adapter = (*FakeVCS)(nil)

// NewFakeVCS creates an empty fake over fs
func NewFakeVCS(fs afero.Fs) *FakeVCS {
	return &FakeVCS{
		FS:     fs,
		copies: map[string]*fakeCheckout{},
		fail:   map[string]error{},
	}
}

// Registry wraps the fake in a vcs.Registry
func (f *FakeVCS) Registry() *vcs.Registry {
	return vcs.NewRegistry(f)
}

// AddRemote registers a repository at url with the given history, oldest
// first. The default branch is master.
func (f *FakeVCS) AddRemote(url string, revs ...FakeRevision) *FakeRemote {
	r := &FakeRemote{URL: url, Branch: "master", Revisions: revs, Tags: map[string]string{}}
	f.remotes = append(f.remotes, r)
	return r
}

func (f *FakeVCS) remote(url string) *FakeRemote {
	for _, r := range f.remotes {
		if vcs.SameRemote(r.URL, url) {
			return r
		}
	}
	return nil
}

// AddCheckout materializes an existing working copy of url at path,
// checked out at rev. An empty url creates a local repository holding
// files.
func (f *FakeVCS) AddCheckout(path, url, rev string, files map[string]string) error {
	co := &fakeCheckout{tracked: map[string]bool{}}
	if url == "" {
		co.rev = FakeRevision{ID: "local0", Files: files}
		co.branch = "master"
	} else {
		r := f.remote(url)
		if r == nil {
			return fmt.Errorf("no fake remote %s", url)
		}
		resolved, ok := r.resolve(rev)
		if !ok {
			return fmt.Errorf("unknown revision %s of %s", rev, url)
		}
		co.remoteURL = url
		co.rev = resolved
		if rev == "" || rev == r.Branch {
			co.branch = r.Branch
		}
	}
	if err := f.FS.MkdirAll(filepath.Join(path, fakeMarker), 0755); err != nil {
		return err
	}
	if err := f.writeFiles(path, nil, co.rev.Files); err != nil {
		return err
	}
	f.copies[path] = co
	return nil
}

// MarkDirty flags uncommitted changes in the working copy at path
func (f *FakeVCS) MarkDirty(path string) { f.mustCopy(path).dirty = true }

// SetOutgoing sets the number of unpublished commits at path
func (f *FakeVCS) SetOutgoing(path string, n int) { f.mustCopy(path).outgoing = n }

// SetRemoteURL changes the default remote of the working copy at path
func (f *FakeVCS) SetRemoteURL(path, url string) { f.mustCopy(path).remoteURL = url }

// Detach leaves the working copy at path without a branch
func (f *FakeVCS) Detach(path string) { f.mustCopy(path).branch = "" }

// FailOn makes operation op ("clone", "checkout", "update", "push", ...)
// fail for path
func (f *FakeVCS) FailOn(op, path string) {
	f.fail[op+" "+path] = errors.Newf(errors.ErrVcsProcess, "fake %s failed in %s", op, path).
		WithDetail("exit_code", 1)
}

// Tracked reports whether file was tracked at path
func (f *FakeVCS) Tracked(path, file string) bool {
	co, ok := f.copies[path]
	return ok && co.tracked[filepath.ToSlash(file)]
}

// Ignored returns the ignore list of the working copy at path
func (f *FakeVCS) Ignored(path string) []string {
	if co, ok := f.copies[path]; ok {
		return append([]string(nil), co.ignored...)
	}
	return nil
}

// HasCall reports whether a call with prefix was recorded
func (f *FakeVCS) HasCall(prefix string) bool {
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (f *FakeVCS) mustCopy(path string) *fakeCheckout {
	co, ok := f.copies[path]
	if !ok {
		panic("no fake working copy at " + path)
	}
	return co
}

func (f *FakeVCS) record(op, path string, args ...string) error {
	f.Calls = append(f.Calls, strings.TrimSpace(strings.Join(append([]string{op, path}, args...), " ")))
	return f.fail[op+" "+path]
}

func (f *FakeVCS) checkout(path string) (*fakeCheckout, error) {
	if !f.IsRepository(path) {
		return nil, errors.Newf(errors.ErrNotARepository, "%s is not a working copy", path)
	}
	return f.copies[path], nil
}

func (f *FakeVCS) writeFiles(path string, old, files map[string]string) error {
	for name := range old {
		if _, keep := files[name]; !keep {
			_ = f.FS.Remove(filepath.Join(path, filepath.FromSlash(name)))
		}
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		full := filepath.Join(path, filepath.FromSlash(name))
		if err := f.FS.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return err
		}
		if err := afero.WriteFile(f.FS, full, []byte(files[name]), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (f *FakeVCS) Kind() vcs.Kind { return vcs.KindGit }

// IsRepository requires both the marker on disk and the in-memory state,
// so removing a directory also removes the working copy
func (f *FakeVCS) IsRepository(path string) bool {
	if _, ok := f.copies[path]; !ok {
		return false
	}
	if !Exists(f.FS, filepath.Join(path, fakeMarker)) {
		delete(f.copies, path)
		return false
	}
	return true
}

func (f *FakeVCS) Init(ctx context.Context, path string) error {
	if err := f.record("init", path); err != nil {
		return err
	}
	return f.AddCheckout(path, "", "", nil)
}

func (f *FakeVCS) Clone(ctx context.Context, url, path string, opts vcs.CloneOptions) error {
	if err := f.record("clone", path, url); err != nil {
		return err
	}
	r := f.remote(url)
	if r == nil {
		return errors.Newf(errors.ErrVcsProcess, "repository %s not found", url).WithDetail("exit_code", 128)
	}
	if entries, _ := afero.ReadDir(f.FS, path); len(entries) > 0 {
		return errors.Newf(errors.ErrVcsProcess, "destination %s is not empty", path).WithDetail("exit_code", 128)
	}
	return f.AddCheckout(path, url, "", nil)
}

func (f *FakeVCS) Checkout(ctx context.Context, path, rev string, clean bool) error {
	if err := f.record("checkout", path, rev); err != nil {
		return err
	}
	co, err := f.checkout(path)
	if err != nil {
		return err
	}
	if co.dirty && !clean {
		return errors.Newf(errors.ErrVcsProcess, "local changes in %s would be overwritten", path).WithDetail("exit_code", 1)
	}

	if co.remoteURL == "" {
		if rev != co.rev.ID && rev != co.branch {
			return errors.Newf(errors.ErrVcsProcess, "unknown revision %s", rev).WithDetail("exit_code", 1)
		}
		return nil
	}

	r := f.remote(co.remoteURL)
	if r == nil {
		return errors.Newf(errors.ErrVcsProcess, "repository %s not found", co.remoteURL).WithDetail("exit_code", 128)
	}
	target, ok := r.resolve(rev)
	if !ok {
		return errors.Newf(errors.ErrVcsProcess, "unknown revision %s", rev).WithDetail("exit_code", 1)
	}
	if err := f.writeFiles(path, co.rev.Files, target.Files); err != nil {
		return err
	}
	co.rev = target
	co.dirty = co.dirty && !clean
	co.branch = ""
	if rev == r.Branch {
		co.branch = r.Branch
	}
	return nil
}

func (f *FakeVCS) Update(ctx context.Context, path string, opts vcs.UpdateOptions) error {
	if err := f.record("update", path, opts.Rev); err != nil {
		return err
	}
	co, err := f.checkout(path)
	if err != nil {
		return err
	}
	if opts.Clean || opts.CleanFiles {
		co.dirty = false
	}
	if opts.Rev != "" {
		return f.Checkout(ctx, path, opts.Rev, opts.Clean)
	}
	if co.branch == "" || co.remoteURL == "" {
		return nil
	}
	return f.Checkout(ctx, path, co.branch, opts.Clean)
}

func (f *FakeVCS) CurrentRevision(ctx context.Context, path string) (string, error) {
	co, err := f.checkout(path)
	if err != nil {
		return "", err
	}
	return co.rev.ID, nil
}

func (f *FakeVCS) CurrentBranch(ctx context.Context, path string) (string, error) {
	co, err := f.checkout(path)
	if err != nil {
		return "", err
	}
	return co.branch, nil
}

func (f *FakeVCS) RemoteURL(ctx context.Context, path string) (string, error) {
	co, err := f.checkout(path)
	if err != nil {
		return "", err
	}
	return co.remoteURL, nil
}

func (f *FakeVCS) IsDirty(ctx context.Context, path string) (bool, error) {
	co, err := f.checkout(path)
	if err != nil {
		return false, err
	}
	return co.dirty, nil
}

func (f *FakeVCS) Status(ctx context.Context, path string) (string, error) {
	co, err := f.checkout(path)
	if err != nil {
		return "", err
	}
	if co.dirty {
		return " M changes\n", nil
	}
	return "", nil
}

func (f *FakeVCS) Commit(ctx context.Context, path, message string) error {
	if err := f.record("commit", path, message); err != nil {
		return err
	}
	co, err := f.checkout(path)
	if err != nil {
		return err
	}
	co.dirty = false
	co.outgoing++
	return nil
}

func (f *FakeVCS) Push(ctx context.Context, path string, all bool) error {
	if err := f.record("push", path); err != nil {
		return err
	}
	co, err := f.checkout(path)
	if err != nil {
		return err
	}
	if co.remoteURL == "" {
		return errors.Newf(errors.ErrVcsProcess, "%s has no remote", path).WithDetail("exit_code", 1)
	}
	co.outgoing = 0
	return nil
}

func (f *FakeVCS) Outgoing(ctx context.Context, path string) (int, error) {
	co, err := f.checkout(path)
	if err != nil {
		return 0, err
	}
	return co.outgoing, nil
}

func (f *FakeVCS) Track(ctx context.Context, path, file string) error {
	if err := f.record("track", path, file); err != nil {
		return err
	}
	co, err := f.checkout(path)
	if err != nil {
		return err
	}
	co.tracked[filepath.ToSlash(file)] = true
	return nil
}

func (f *FakeVCS) Untrack(ctx context.Context, path, file string) error {
	if err := f.record("untrack", path, file); err != nil {
		return err
	}
	co, err := f.checkout(path)
	if err != nil {
		return err
	}
	delete(co.tracked, filepath.ToSlash(file))
	return nil
}

func (f *FakeVCS) Ignore(path, rel string) error {
	co, ok := f.copies[path]
	if !ok {
		return nil
	}
	rel = filepath.ToSlash(rel)
	for _, i := range co.ignored {
		if i == rel {
			return nil
		}
	}
	co.ignored = append(co.ignored, rel)
	return nil
}

func (f *FakeVCS) Unignore(path, rel string) error {
	co, ok := f.copies[path]
	if !ok {
		return nil
	}
	rel = filepath.ToSlash(rel)
	kept := co.ignored[:0]
	for _, i := range co.ignored {
		if i != rel {
			kept = append(kept, i)
		}
	}
	co.ignored = kept
	return nil
}
