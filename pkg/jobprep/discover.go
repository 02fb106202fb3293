package jobprep

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zacherywillard/vasp-helper/pkg/manifest"
)

// ErrNoNeutralDirs indicates a baseline root without any neutral
// reference directories.
var ErrNoNeutralDirs = errors.New("no neutral reference directories found")

// ErrNoJobs indicates a source root without any matching job
// directories.
var ErrNoJobs = errors.New("no matching job directories found")

// jobNameRe matches <species>_<site>_<charge> directory names, e.g.
// "V_O_0" or "Mg_Ti_-2".
var jobNameRe = regexp.MustCompile(`^([A-Za-z]+)_([A-Za-z0-9]+)_(-?\d+)$`)

// JobName is a parsed job directory name.
type JobName struct {
	Species string
	Site    string
	Charge  int
}

// ParseJobName parses a directory name of the form
// <species>_<site>_<charge>. The second return is false when the name
// does not follow the convention.
func ParseJobName(name string) (JobName, bool) {
	m := jobNameRe.FindStringSubmatch(name)
	if m == nil {
		return JobName{}, false
	}
	charge, err := strconv.Atoi(m[3])
	if err != nil {
		return JobName{}, false
	}
	return JobName{Species: m[1], Site: m[2], Charge: charge}, true
}

// String renders the canonical directory name.
func (j JobName) String() string {
	return fmt.Sprintf("%s_%s_%d", j.Species, j.Site, j.Charge)
}

// Neutral reports whether this is a neutral reference (charge 0).
func (j JobName) Neutral() bool {
	return j.Charge == 0
}

// Baseline returns the neutral reference name for this job.
func (j JobName) Baseline() JobName {
	return JobName{Species: j.Species, Site: j.Site, Charge: 0}
}

// WithCharge returns the variant of this job at the given charge.
func (j JobName) WithCharge(charge int) JobName {
	return JobName{Species: j.Species, Site: j.Site, Charge: charge}
}

// Filter narrows discovery with doublestar glob patterns applied to
// job directory names. Empty Includes matches everything.
type Filter struct {
	Includes []string
	Excludes []string
}

// Match reports whether a job name passes the filter.
func (f Filter) Match(name string) (bool, error) {
	for _, pat := range f.Excludes {
		ok, err := doublestar.Match(pat, name)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pat, err)
		}
		if ok {
			return false, nil
		}
	}
	if len(f.Includes) == 0 {
		return true, nil
	}
	for _, pat := range f.Includes {
		ok, err := doublestar.Match(pat, name)
		if err != nil {
			return false, fmt.Errorf("invalid include pattern %q: %w", pat, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// DiscoverNeutral lists the neutral reference directories under root
// in lexicographic order. Returns ErrNoNeutralDirs when none match.
func DiscoverNeutral(root string, f Filter) ([]JobName, error) {
	jobs, err := discover(root, f, func(j JobName) bool { return j.Neutral() })
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoNeutralDirs)
	}
	return jobs, nil
}

// DiscoverJobs lists job directories under root matching the naming
// convention, filtered by the inclusion mode (manifest.IncludeCharged,
// IncludeNeutral or IncludeBoth), in lexicographic order. Returns
// ErrNoJobs when none match.
func DiscoverJobs(root, include string, f Filter) ([]JobName, error) {
	keep := func(j JobName) bool {
		switch include {
		case manifest.IncludeCharged:
			return !j.Neutral()
		case manifest.IncludeNeutral:
			return j.Neutral()
		default:
			return true
		}
	}
	jobs, err := discover(root, f, keep)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoJobs)
	}
	return jobs, nil
}

// discover walks root's immediate subdirectories. os.ReadDir returns
// entries sorted by name, which fixes the batch's preparation order.
func discover(root string, f Filter, keep func(JobName) bool) ([]JobName, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	var jobs []JobName
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		j, ok := ParseJobName(e.Name())
		if !ok || !keep(j) {
			continue
		}
		ok, err := f.Match(e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}
