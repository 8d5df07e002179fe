package weather

import "path"

// TextureDir is where legend and texture images live under the site root.
const TextureDir = "src/images/textures/"

// Layer names an OpenWeatherMap tile layer.
type Layer string

const (
	LayerNone          Layer = ""
	LayerClouds        Layer = "clouds_new"
	LayerPrecipitation Layer = "precipitation_new"
	LayerPressure      Layer = "pressure_new"
	LayerTemperature   Layer = "temp_new"
	LayerWind          Layer = "wind_new"
)

// Layers lists every downloadable layer in selector order.
var Layers = []Layer{LayerClouds, LayerPrecipitation, LayerPressure, LayerTemperature, LayerWind}

var legends = map[Layer]string{
	LayerClouds:        "scale_clouds.png",
	LayerPrecipitation: "scale_precipitation.png",
	LayerPressure:      "scale_pressure.png",
	LayerTemperature:   "scale_temperature.png",
	LayerWind:          "scale_wind.png",
}

var labels = map[Layer]string{
	LayerClouds:        "Clouds",
	LayerPrecipitation: "Precipitation",
	LayerPressure:      "Pressure",
	LayerTemperature:   "Temperature",
	LayerWind:          "Wind speed",
}

// ParseLayer returns the layer for a selector value. Unknown values map to
// LayerNone with ok=false.
func ParseLayer(s string) (Layer, bool) {
	l := Layer(s)
	if _, ok := legends[l]; ok {
		return l, true
	}
	return LayerNone, false
}

// Legend returns the legend image path for the layer, or "" for none.
func (l Layer) Legend() string {
	name, ok := legends[l]
	if !ok {
		return ""
	}
	return path.Join(TextureDir, name)
}

// Label returns a human-readable layer name.
func (l Layer) Label() string {
	if s, ok := labels[l]; ok {
		return s
	}
	return "None"
}

// Index returns the selector position of l, or -1.
func (l Layer) Index() int {
	for i, x := range Layers {
		if x == l {
			return i
		}
	}
	return -1
}
