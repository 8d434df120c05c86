package views

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagedash/internal/engine"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.Columns = Columns{
		Period:       "period",
		Region:       "region",
		Age:          "age",
		Industry:     "industry",
		Wage:         "wage",
		Scheduled:    "scheduled",
		Bonus:        "bonus",
		Lon:          "lon",
		Lat:          "lat",
		GeoRegion:    "pref_name",
		AllAges:      "all",
		Relative:     "wage_relative",
		NationalWage: "national_wage",
		RegionalWage: "regional_wage",
	}
	s.Metrics = []string{"wage", "scheduled", "bonus"}
	return s
}

func testDatasets() *Datasets {
	return NewDatasets(map[string]*engine.Table{
		"regional": engine.MustTable(
			engine.StringColumn("region", "Tokyo", "Osaka", "Tokyo", "Tokyo", "Osaka"),
			engine.IntColumn("period", 2019, 2019, 2018, 2019, 2018),
			engine.StringColumn("age", "all", "all", "all", "20-24", "all"),
			engine.IntColumn("wage", 500, 400, 530, 300, 390),
		),
		"geo": engine.MustTable(
			engine.StringColumn("pref_name", "Tokyo", "Osaka"),
			engine.FloatColumn("lon", 139.69, 135.50),
			engine.FloatColumn("lat", 35.69, 34.69),
		),
		"national": engine.MustTable(
			engine.IntColumn("period", 2019, 2018, 2019, 2019),
			engine.StringColumn("age", "all", "all", "20-24", "25-29"),
			engine.IntColumn("wage", 500, 480, 250, 320),
			engine.IntColumn("scheduled", 300, 290, 200, 240),
			engine.IntColumn("bonus", 80, 75, 20, 40),
		),
		"industry": engine.MustTable(
			engine.StringColumn("industry", "Construction", "Finance", "Retail", "Finance"),
			engine.IntColumn("period", 2019, 2019, 2019, 2020),
			engine.StringColumn("age", "all", "all", "all", "all"),
			engine.IntColumn("wage", 100, 300, 200, 900),
			engine.IntColumn("scheduled", 80, 250, 150, 700),
			engine.IntColumn("bonus", 10, 60, 30, 150),
		),
	}, nil)
}

func TestCompute_GeoScenario(t *testing.T) {
	a := NewAssembler(testSettings(), nil)

	res, err := a.Compute(KindGeo, testDatasets(), Selection{})
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "period", "age", "wage", "lon", "lat", "wage_relative"}, res.Table.Columns())
	require.Equal(t, 2, res.Table.Len())
	assert.Equal(t, "Tokyo", res.Table.Get(0, "region"))
	assert.Equal(t, 1.0, res.Table.Get(0, "wage_relative"))
	assert.Equal(t, "Osaka", res.Table.Get(1, "region"))
	assert.Equal(t, 0.0, res.Table.Get(1, "wage_relative"))
	assert.Equal(t, 135.50, res.Table.Get(1, "lon"))

	require.NotNil(t, res.Map)
	assert.Equal(t, Camera{Longitude: 139.691648, Latitude: 35.689185, Zoom: 4, Pitch: 40.5}, res.Map.Camera)
	assert.Equal(t, 0.4, res.Map.Heatmap.Opacity)
	assert.Equal(t, 0.3, res.Map.Heatmap.Threshold)
	assert.Equal(t, "wage_relative", res.Map.Heatmap.Weight)
	assert.Equal(t, &engine.MergeStats{Rows: 2}, res.Merge)
	assert.Equal(t, 2019, res.Selection.Year)
}

func TestCompute_GeoNormalizesOverMapYearOnly(t *testing.T) {
	s := testSettings()
	s.MapYear = 2018
	a := NewAssembler(s, nil)

	res, err := a.Compute(KindGeo, testDatasets(), Selection{})
	require.NoError(t, err)

	// 2018: Tokyo 530, Osaka 390; the 2019 rows play no part in min/max
	assert.Equal(t, 1.0, res.Table.Get(0, "wage_relative"))
	assert.Equal(t, 0.0, res.Table.Get(1, "wage_relative"))
}

func TestCompute_GeoEmptyYear(t *testing.T) {
	s := testSettings()
	s.MapYear = 2000
	a := NewAssembler(s, nil)

	res, err := a.Compute(KindGeo, testDatasets(), Selection{})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Contains(t, res.Table.Columns(), "wage_relative")
}

func TestCompute_GeoDuplicateReference(t *testing.T) {
	data := testDatasets()
	data.tables[DatasetGeo] = engine.MustTable(
		engine.StringColumn("region", "Tokyo", "Tokyo"),
		engine.FloatColumn("lon", 139.69, 139.70),
		engine.FloatColumn("lat", 35.69, 35.70),
	)

	_, err := NewAssembler(testSettings(), nil).Compute(KindGeo, data, Selection{})

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageReference, stageErr.Stage)
	assert.ErrorIs(t, err, engine.ErrSchema)
}

func TestCompute_GeoDegenerate(t *testing.T) {
	data := testDatasets()
	data.tables[DatasetRegional] = engine.MustTable(
		engine.StringColumn("region", "Tokyo", "Osaka"),
		engine.IntColumn("period", 2019, 2019),
		engine.StringColumn("age", "all", "all"),
		engine.IntColumn("wage", 450, 450),
	)

	_, err := NewAssembler(testSettings(), nil).Compute(KindGeo, data, Selection{})

	require.ErrorIs(t, err, engine.ErrDegenerateRange)
	assert.Contains(t, err.Error(), "geo view: normalize stage")
}

func TestCompute_TrendScenario(t *testing.T) {
	a := NewAssembler(testSettings(), nil)

	res, err := a.Compute(KindTrend, testDatasets(), Selection{Region: "Tokyo"})
	require.NoError(t, err)

	assert.Equal(t, []string{"period", "national_wage", "regional_wage"}, res.Table.Columns())
	assert.Equal(t, [][]any{
		{int64(2018), int64(480), int64(530)},
		{int64(2019), int64(500), int64(500)},
	}, res.Table.Records())
}

func TestCompute_TrendSingleYear(t *testing.T) {
	data := NewDatasets(map[string]*engine.Table{
		"national": engine.MustTable(
			engine.IntColumn("period", 2019),
			engine.StringColumn("age", "all"),
			engine.IntColumn("wage", 500),
		),
		"regional": engine.MustTable(
			engine.StringColumn("region", "Tokyo"),
			engine.IntColumn("period", 2019),
			engine.StringColumn("age", "all"),
			engine.IntColumn("wage", 550),
		),
	}, nil)

	res, err := NewAssembler(testSettings(), nil).Compute(KindTrend, data, Selection{Region: "Tokyo", Year: 2019})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(2019), int64(500), int64(550)}}, res.Table.Records())
}

func TestCompute_TrendDefaultsRegion(t *testing.T) {
	res, err := NewAssembler(testSettings(), nil).Compute(KindTrend, testDatasets(), Selection{})
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", res.Selection.Region)

	res, err = NewAssembler(testSettings(), nil).Compute(KindTrend, testDatasets(), Selection{Region: "Fukuoka"})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, 0, res.Merge.Rows)
	assert.Equal(t, 2, res.Merge.LeftUnmatched)
}

func TestCompute_Age(t *testing.T) {
	res, err := NewAssembler(testSettings(), nil).Compute(KindAge, testDatasets(), Selection{})
	require.NoError(t, err)

	assert.Equal(t, []string{"period", "age", "wage", "scheduled", "bonus"}, res.Table.Columns())
	assert.Equal(t, 2, res.Table.Len())
	for i := 0; i < res.Table.Len(); i++ {
		assert.NotEqual(t, "all", res.Table.Get(i, "age"))
	}
	require.NotNil(t, res.Scatter)
	assert.Equal(t, "period", res.Scatter.AnimationFrame)
	assert.Equal(t, "age", res.Scatter.AnimationGroup)
	assert.Equal(t, [2]float64{150, 700}, res.Scatter.RangeX)
	assert.Equal(t, 38, res.Scatter.SizeMax)

	res, err = NewAssembler(testSettings(), nil).Compute(KindAge, testDatasets(), Selection{Age: "25-29"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Table.Len())
}

func TestCompute_IndustryScenario(t *testing.T) {
	res, err := NewAssembler(testSettings(), nil).Compute(KindIndustry, testDatasets(), Selection{Year: 2019, Metric: "wage"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Table.Len())
	require.NotNil(t, res.Range)
	assert.Equal(t, AxisRange{Min: 0, Max: 350}, *res.Range)
	assert.Equal(t, "wage", res.Bar.X)
	assert.Equal(t, "industry", res.Bar.Y)
	assert.Equal(t, "h", res.Bar.Orientation)
}

func TestCompute_IndustryDefaultsAndEmpty(t *testing.T) {
	a := NewAssembler(testSettings(), nil)

	res, err := a.Compute(KindIndustry, testDatasets(), Selection{})
	require.NoError(t, err)
	assert.Equal(t, 2019, res.Selection.Year)
	assert.Equal(t, "wage", res.Selection.Metric)

	res, err = a.Compute(KindIndustry, testDatasets(), Selection{Year: 2021, Metric: "bonus"})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Nil(t, res.Range)

	_, err = a.Compute(KindIndustry, testDatasets(), Selection{Year: 2019, Metric: "overtime"})
	assert.ErrorIs(t, err, ErrSelection)
}

func TestCompute_IndustryWithoutMetrics(t *testing.T) {
	s := testSettings()
	s.Metrics = nil
	a := NewAssembler(s, nil)

	_, err := a.Compute(KindIndustry, testDatasets(), Selection{})

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageSelection, stageErr.Stage)
	assert.ErrorIs(t, err, ErrSelection)

	// the other views do not depend on metrics
	_, err = a.Compute(KindTrend, testDatasets(), Selection{})
	assert.NoError(t, err)
}

func TestCompute_SelectionValidation(t *testing.T) {
	_, err := NewAssembler(testSettings(), nil).Compute(KindIndustry, testDatasets(), Selection{Year: 42})

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageSelection, stageErr.Stage)
	assert.ErrorIs(t, err, ErrSelection)
}

func TestCompute_UnknownView(t *testing.T) {
	_, err := NewAssembler(testSettings(), nil).Compute(Kind("pie"), testDatasets(), Selection{})
	assert.ErrorIs(t, err, ErrUnknownView)

	_, err = ParseKind("pie")
	assert.ErrorIs(t, err, ErrUnknownView)
	k, err := ParseKind("trend")
	require.NoError(t, err)
	assert.Equal(t, KindTrend, k)
}

func TestComputeAll_IsolatesFailures(t *testing.T) {
	data := testDatasets()
	delete(data.tables, DatasetGeo)
	data.errs[DatasetGeo] = errors.New("open pref_lat_lon.csv: no such file")

	outcomes := NewAssembler(testSettings(), nil).ComputeAll(data, Selection{Region: "Osaka"})
	require.Len(t, outcomes, len(Kinds))

	for _, o := range outcomes {
		if o.View == KindGeo {
			require.Error(t, o.Err)
			assert.ErrorIs(t, o.Err, ErrDatasetUnavailable)
			assert.Contains(t, o.Err.Error(), "geo view: load stage")
			continue
		}
		assert.NoError(t, o.Err, o.View)
		assert.NotNil(t, o.Result, o.View)
	}
}

type recordingObserver struct {
	views  []Kind
	errs   int
	merges int
}

func (r *recordingObserver) ObserveView(view Kind, _ time.Duration, err error) {
	r.views = append(r.views, view)
	if err != nil {
		r.errs++
	}
}

func (r *recordingObserver) ObserveMerge(Kind, engine.MergeStats) { r.merges++ }

func TestAssembler_Observer(t *testing.T) {
	obs := &recordingObserver{}
	a := NewAssembler(testSettings(), nil, WithObserver(obs))

	a.ComputeAll(testDatasets(), Selection{})

	assert.Equal(t, Kinds, obs.views)
	assert.Zero(t, obs.errs)
	assert.Equal(t, 2, obs.merges, "geo and trend merge")
}

func TestAssembler_Options(t *testing.T) {
	data := testDatasets()
	delete(data.tables, DatasetNational)

	opts := NewAssembler(testSettings(), nil).Options(data)

	assert.Equal(t, []int64{2019, 2020}, opts.Years)
	assert.Equal(t, []string{"Tokyo", "Osaka"}, opts.Regions)
	assert.Equal(t, []string{"wage", "scheduled", "bonus"}, opts.Metrics)
	assert.Empty(t, opts.AgeBrackets)
}
