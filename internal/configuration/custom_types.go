package configuration

import (
	"reflect"
	"strings"

	"github.com/markusressel/pid2go/internal/plant"
	"github.com/mitchellh/mapstructure"
)

// DecodeHook is the decode hook used for all configuration values
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		IntegrationMethodHookFunc(),
	)
}

// IntegrationMethodHookFunc returns a mapstructure decode hook that normalizes
// integration method names (case, "_" vs "-", aliases like "runge-kutta").
// Unknown names are passed through as-is, so validation can report them.
func IntegrationMethodHookFunc() mapstructure.DecodeHookFuncType {
	methodType := reflect.TypeOf(plant.IntegrationMethod(""))

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != methodType {
			return data, nil
		}
		name, ok := data.(string)
		if !ok {
			return data, nil
		}
		if method, ok := plant.ParseIntegrationMethod(name); ok {
			return method, nil
		}
		return plant.IntegrationMethod(strings.ToLower(strings.TrimSpace(name))), nil
	}
}
