package views

import (
	"fmt"

	"wagedash/internal/engine"
)

// geoReference shapes the coordinate table to (region, lon, lat) and checks
// that every region appears at most once.
func (a *Assembler) geoReference(ref *engine.Table) (*engine.Table, error) {
	cols := a.settings.Columns
	if cols.GeoRegion != cols.Region && ref.Has(cols.GeoRegion) && !ref.Has(cols.Region) {
		var err error
		if ref, err = engine.Rename(ref, map[string]string{cols.GeoRegion: cols.Region}); err != nil {
			return nil, err
		}
	}
	ref, err := engine.Select(ref, cols.Region, cols.Lon, cols.Lat)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{cols.Lon, cols.Lat} {
		c, _ := ref.Column(name)
		if !c.Kind().Numeric() {
			return nil, fmt.Errorf("%w: coordinate column %q is %s", engine.ErrSchema, name, c.Kind())
		}
	}

	region, _ := ref.Column(cols.Region)
	seen := make(map[string]struct{}, ref.Len())
	for i := 0; i < ref.Len(); i++ {
		s, ok := region.Text(i)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: region %q appears more than once in the geo reference", engine.ErrSchema, s)
		}
		seen[s] = struct{}{}
	}
	return ref, nil
}

// geo: all-ages regional rows for the map year, joined to coordinates, with
// the wage normalized over that single year.
func (a *Assembler) geo(p pipeline, data *Datasets, sel Selection) (*Result, error) {
	cols := a.settings.Columns

	regional, err := a.input(p, data, DatasetRegional)
	if err != nil {
		return nil, err
	}
	ref, err := a.input(p, data, DatasetGeo)
	if err != nil {
		return nil, err
	}

	t, err := engine.Filter(regional, cols.Age, cols.AllAges)
	if err != nil {
		return nil, p.fail(StageFilter, err)
	}
	if t, err = engine.Filter(t, cols.Period, a.settings.MapYear); err != nil {
		return nil, p.fail(StageFilter, err)
	}

	if ref, err = a.geoReference(ref); err != nil {
		return nil, p.fail(StageReference, err)
	}
	t, stats, err := engine.Merge(t, ref, cols.Region)
	if err != nil {
		return nil, p.fail(StageMerge, err)
	}

	if t.Empty() {
		t, err = engine.WithColumn(t, engine.FloatColumn(cols.Relative))
	} else {
		t, err = engine.Normalize(t, cols.Wage, cols.Relative)
	}
	if err != nil {
		return nil, p.fail(StageNormalize, err)
	}

	sel.Year = a.settings.MapYear
	return &Result{
		View:      p.view,
		Selection: sel,
		Table:     t,
		Merge:     &stats,
		Map:       a.settings.mapSettings(),
	}, nil
}
