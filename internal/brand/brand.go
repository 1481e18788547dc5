// Package brand provides the tenant (brand) directory: an immutable
// snapshot of every customer organization, loaded once at process start and
// injected into the gateway. The gateway never mutates a tenant record.
//
// Admin secrets are not part of the snapshot — a tenant carries only an
// opaque reference which a SecretSource resolves at check time, so secrets
// can never leak through a serialized tenant or a log line.
package brand

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/festivent/festivent/internal/validate"
)

// Tenant identifies one brand/organization.
type Tenant struct {
	// ID is the tenant's lowercase slug, unique across the directory.
	ID string `yaml:"id"`
	// Hostnames are the exact hostnames this tenant is served under.
	Hostnames []string `yaml:"hostnames"`
	// AdminSecretRef is an opaque reference resolvable by a SecretSource.
	// The secret itself never appears here or in logs.
	AdminSecretRef string `yaml:"admin_secret_ref"`
	// FeatureFlags gates optional platform features per tenant.
	FeatureFlags map[string]bool `yaml:"feature_flags"`
}

// Flag reports the value of a feature flag, defaulting to false.
func (t *Tenant) Flag(name string) bool {
	return t.FeatureFlags[name]
}

// Directory is the immutable tenant snapshot.
type Directory struct {
	byID   map[string]*Tenant
	byHost map[string]*Tenant
}

// directoryFile is the on-disk YAML shape.
type directoryFile struct {
	Brands []Tenant `yaml:"brands"`
}

// Load reads and validates a brand directory YAML file.
func Load(path string) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brand directory: %w", err)
	}
	var file directoryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse brand directory: %w", err)
	}
	return New(file.Brands)
}

// New builds a Directory from tenant records, validating each.
func New(tenants []Tenant) (*Directory, error) {
	d := &Directory{
		byID:   make(map[string]*Tenant, len(tenants)),
		byHost: make(map[string]*Tenant),
	}
	for i := range tenants {
		t := &tenants[i]

		var errs validate.MultiError
		errs.Add(validate.IsTenantSlug("id", t.ID))
		if len(t.Hostnames) == 0 {
			errs.Add(validate.NonEmptyString("hostnames", ""))
		}
		for _, h := range t.Hostnames {
			errs.Add(validate.IsHostname("hostnames", h))
		}
		errs.Add(validate.NonEmptyString("admin_secret_ref", t.AdminSecretRef))
		if errs.HasErrors() {
			return nil, fmt.Errorf("brand %q: %s", t.ID, errs.Error())
		}

		if _, dup := d.byID[t.ID]; dup {
			return nil, fmt.Errorf("brand %q: duplicate id", t.ID)
		}
		d.byID[t.ID] = t
		for _, h := range t.Hostnames {
			if _, dup := d.byHost[h]; dup {
				return nil, fmt.Errorf("brand %q: hostname %q already claimed", t.ID, h)
			}
			d.byHost[h] = t
		}
	}
	return d, nil
}

// Lookup returns the tenant with the given id, or nil.
func (d *Directory) Lookup(id string) *Tenant {
	return d.byID[id]
}

// LookupByHostname returns the tenant serving the given hostname, or nil.
// Exact, case-sensitive match only — no substring or suffix matching, to
// prevent hostname-spoofing.
func (d *Directory) LookupByHostname(host string) *Tenant {
	return d.byHost[host]
}

// Slugs returns all tenant ids, sorted. Used to seed the route tables.
func (d *Directory) Slugs() []string {
	out := make([]string, 0, len(d.byID))
	for id := range d.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SecretSource resolves an AdminSecretRef to the actual secret.
type SecretSource interface {
	// Resolve returns the secret for ref, or "" if the ref is unknown.
	Resolve(ref string) string
}

// EnvSecretSource resolves references as environment variable names.
type EnvSecretSource struct{}

// Resolve implements SecretSource.
func (EnvSecretSource) Resolve(ref string) string {
	return os.Getenv(ref)
}
