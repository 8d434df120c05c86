package views

// Columns names the columns the pipelines read and write.
type Columns struct {
	Period    string `yaml:"period" validate:"required"`
	Region    string `yaml:"region" validate:"required"`
	Age       string `yaml:"age" validate:"required"`
	Industry  string `yaml:"industry" validate:"required"`
	Wage      string `yaml:"wage" validate:"required"`
	Scheduled string `yaml:"scheduled" validate:"required"`
	Bonus     string `yaml:"bonus" validate:"required"`
	Lon       string `yaml:"lon" validate:"required"`
	Lat       string `yaml:"lat" validate:"required"`
	// GeoRegion is the region column of the geo reference before it is
	// renamed to Region.
	GeoRegion    string `yaml:"geo_region" validate:"required"`
	AllAges      string `yaml:"all_ages" validate:"required"`
	Relative     string `yaml:"relative" validate:"required"`
	NationalWage string `yaml:"national_wage" validate:"required"`
	RegionalWage string `yaml:"regional_wage" validate:"required"`
}

// Camera is the initial map viewpoint.
type Camera struct {
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Zoom      float64 `json:"zoom" yaml:"zoom" validate:"gte=0"`
	Pitch     float64 `json:"pitch" yaml:"pitch" validate:"gte=0,lte=90"`
}

// Heatmap holds the heatmap layer parameters.
type Heatmap struct {
	Opacity   float64 `json:"opacity" yaml:"opacity" validate:"gte=0,lte=1"`
	Threshold float64 `json:"threshold" yaml:"threshold" validate:"gte=0,lte=1"`
	Weight    string  `json:"weight" yaml:"-"`
	Longitude string  `json:"longitude_column" yaml:"-"`
	Latitude  string  `json:"latitude_column" yaml:"-"`
}

// MapSettings is attached to the geo view.
type MapSettings struct {
	Camera  Camera  `json:"camera" yaml:"camera"`
	Heatmap Heatmap `json:"heatmap" yaml:"heatmap"`
}

// ScatterSettings is attached to the age view.
type ScatterSettings struct {
	X              string     `json:"x" yaml:"-"`
	Y              string     `json:"y" yaml:"-"`
	Size           string     `json:"size" yaml:"-"`
	Color          string     `json:"color" yaml:"-"`
	AnimationFrame string     `json:"animation_frame" yaml:"-"`
	AnimationGroup string     `json:"animation_group" yaml:"-"`
	RangeX         [2]float64 `json:"range_x" yaml:"range_x"`
	RangeY         [2]float64 `json:"range_y" yaml:"range_y"`
	SizeMax        int        `json:"size_max" yaml:"size_max" validate:"gte=1"`
}

// BarSettings is attached to the industry view.
type BarSettings struct {
	X              string `json:"x" yaml:"-"`
	Y              string `json:"y" yaml:"-"`
	Color          string `json:"color" yaml:"-"`
	AnimationFrame string `json:"animation_frame" yaml:"-"`
	Orientation    string `json:"orientation" yaml:"orientation" validate:"oneof=h v"`
	Width          int    `json:"width" yaml:"width" validate:"gte=1"`
	Height         int    `json:"height" yaml:"height" validate:"gte=1"`
}

// AxisRange is a display range derived from the data.
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Settings are the invocation-time constants of every view.
type Settings struct {
	Columns Columns         `yaml:"columns"`
	MapYear int             `yaml:"map_year" validate:"gte=1900,lte=2100"`
	Metrics []string        `yaml:"metrics" validate:"min=1,dive,required"`
	Margin  float64         `yaml:"margin" validate:"gte=0"`
	Map     MapSettings     `yaml:"map"`
	Scatter ScatterSettings `yaml:"scatter"`
	Bar     BarSettings     `yaml:"bar"`
}

// DefaultSettings matches the published wage statistics CSVs.
func DefaultSettings() Settings {
	cols := Columns{
		Period:       "集計年",
		Region:       "都道府県名",
		Age:          "年齢",
		Industry:     "産業大分類名",
		Wage:         "一人当たり賃金（万円）",
		Scheduled:    "所定内給与額（万円）",
		Bonus:        "年間賞与その他特別給与額（万円）",
		Lon:          "lon",
		Lat:          "lat",
		GeoRegion:    "pref_name",
		AllAges:      "年齢計",
		Relative:     "一人当たり賃金（相対値）",
		NationalWage: "全国_一人当たり賃金（万円）",
		RegionalWage: "一人当たり賃金（万円）",
	}
	return Settings{
		Columns: cols,
		MapYear: 2019,
		Metrics: []string{cols.Wage, cols.Scheduled, cols.Bonus},
		Margin:  50,
		Map: MapSettings{
			Camera:  Camera{Longitude: 139.691648, Latitude: 35.689185, Zoom: 4, Pitch: 40.5},
			Heatmap: Heatmap{Opacity: 0.4, Threshold: 0.3},
		},
		Scatter: ScatterSettings{
			RangeX:  [2]float64{150, 700},
			RangeY:  [2]float64{0, 150},
			SizeMax: 38,
		},
		Bar: BarSettings{Orientation: "h", Width: 800, Height: 500},
	}
}

// mapSettings binds the column names into the heatmap parameters.
func (s Settings) mapSettings() *MapSettings {
	m := s.Map
	m.Heatmap.Weight = s.Columns.Relative
	m.Heatmap.Longitude = s.Columns.Lon
	m.Heatmap.Latitude = s.Columns.Lat
	return &m
}

func (s Settings) scatterSettings() *ScatterSettings {
	sc := s.Scatter
	sc.X = s.Columns.Wage
	sc.Y = s.Columns.Bonus
	sc.Size = s.Columns.Scheduled
	sc.Color = s.Columns.Age
	sc.AnimationFrame = s.Columns.Period
	sc.AnimationGroup = s.Columns.Age
	return &sc
}

func (s Settings) barSettings(metric string) *BarSettings {
	b := s.Bar
	b.X = metric
	b.Y = s.Columns.Industry
	b.Color = s.Columns.Industry
	b.AnimationFrame = s.Columns.Age
	return &b
}
