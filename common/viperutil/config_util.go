/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package viperutil

import (
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/depress-xyz/depress/common/flogging"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var logger = flogging.MustGetLogger("viperutil")

type viperGetter func(key string) interface{}

// getKeysRecursively walks the settings under base guided by oType. Struct
// fields missing from nodeKeys are still visited so that environment
// overrides and FOO_FILE variables for keys without a configured value are
// honored.
func getKeysRecursively(base string, getKey viperGetter, nodeKeys map[string]interface{}, oType reflect.Type) map[string]interface{} {
	keys := make(map[string]interface{}, len(nodeKeys))
	for k, v := range nodeKeys {
		keys[k] = v
	}

	subTypes := map[string]reflect.Type{}
	if oType != nil && oType.Kind() == reflect.Struct {
	outer:
		for i := 0; i < oType.NumField(); i++ {
			fieldName := oType.Field(i).Name
			fieldType := oType.Field(i).Type

			for key := range keys {
				if strings.EqualFold(fieldName, key) {
					subTypes[key] = fieldType
					continue outer
				}
			}

			subTypes[fieldName] = fieldType
			keys[fieldName] = nil
		}
	}

	result := make(map[string]interface{})
	for key := range keys {
		fqKey := base + key
		val := getKey(fqKey)
		if m, ok := val.(map[interface{}]interface{}); ok {
			logger.Debugf("Found map[interface{}]interface{} value for %s", fqKey)
			result[key] = getKeysRecursively(fqKey+".", getKey, toMapStringInterface(m), subTypes[key])
		} else if m, ok := val.(map[string]interface{}); ok {
			logger.Debugf("Found map[string]interface{} value for %s", fqKey)
			result[key] = getKeysRecursively(fqKey+".", getKey, m, subTypes[key])
		} else if m, ok := unmarshalJSON(val); ok {
			logger.Debugf("Found real value for %s setting to map[string]string %v", fqKey, m)
			result[key] = m
		} else if val == nil {
			if fileVal := getKey(fqKey + ".File"); fileVal != nil {
				result[key] = map[string]interface{}{"File": fileVal}
				continue
			}
			if t := subTypes[key]; t != nil && t.Kind() == reflect.Struct {
				result[key] = getKeysRecursively(fqKey+".", getKey, map[string]interface{}{}, t)
				continue
			}
			result[key] = nil
		} else {
			logger.Debugf("Found real value for %s setting to %T %v", fqKey, val, val)
			result[key] = val
		}
	}
	return result
}

func toMapStringInterface(m map[interface{}]interface{}) map[string]interface{} {
	result := map[string]interface{}{}
	for k, v := range m {
		k, ok := k.(string)
		if !ok {
			panic(fmt.Sprintf("Non string %v, %v: key-entry: %v", k, v, k))
		}
		result[k] = v
	}
	return result
}

func unmarshalJSON(val interface{}) (map[string]string, bool) {
	mp := map[string]string{}
	s, ok := val.(string)
	if !ok {
		return nil, false
	}
	err := json.Unmarshal([]byte(s), &mp)
	if err != nil {
		return nil, false
	}
	return mp, true
}

// customDecodeHook parses strings of the format "[thing1, thing2, thing3]"
// into string slices. Note that whitespace around slice elements is removed.
func customDecodeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}

	raw := data.(string)
	l := len(raw)
	if l > 1 && raw[0] == '[' && raw[l-1] == ']' {
		slice := strings.Split(raw[1:l-1], ",")
		for i, v := range slice {
			slice[i] = strings.TrimSpace(v)
		}
		return slice, nil
	}

	return data, nil
}

func stringFromFileDecodeHook(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
	// "to" type should be string
	if t != reflect.String {
		return data, nil
	}
	// "from" type should be map
	if f != reflect.Map {
		return data, nil
	}
	d, ok := data.(map[string]interface{})
	if !ok {
		return data, nil
	}
	fileName, ok := d["File"]
	if !ok {
		fileName, ok = d["file"]
	}
	switch {
	case ok && fileName != nil:
		bytes, err := os.ReadFile(fileName.(string))
		if err != nil {
			return data, err
		}
		return string(bytes), nil
	case ok:
		// fileName was nil
		return nil, fmt.Errorf("Value of File: was nil")
	}
	return data, nil
}

func pemBlocksFromFileDecodeHook(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
	// "to" type should be a slice
	if t != reflect.Slice {
		return data, nil
	}
	// "from" type should be map
	if f != reflect.Map {
		return data, nil
	}

	var fileName string
	var ok bool
	switch d := data.(type) {
	case map[string]string:
		fileName, ok = d["File"]
		if !ok {
			fileName, ok = d["file"]
		}
	case map[string]interface{}:
		var fileI interface{}
		fileI, ok = d["File"]
		if !ok {
			fileI = d["file"]
		}
		fileName, ok = fileI.(string)
	}

	switch {
	case ok && fileName != "":
		var result []string
		bytes, err := os.ReadFile(fileName)
		if err != nil {
			return data, err
		}
		for len(bytes) > 0 {
			var block *pem.Block
			block, bytes = pem.Decode(bytes)
			if block == nil {
				break
			}
			if block.Type != "CERTIFICATE" || len(block.Headers) != 0 {
				continue
			}
			result = append(result, string(pem.EncodeToMemory(block)))
		}
		return result, nil
	case ok:
		// fileName was nil
		return nil, fmt.Errorf("Value of File: was nil")
	}
	return data, nil
}

// EnhancedExactUnmarshal is intended to unmarshal a config file into a structure
// producing error when extraneous variables are introduced and supporting
// the time.Duration type
func EnhancedExactUnmarshal(v *viper.Viper, output interface{}) error {
	oType := reflect.TypeOf(output)
	if oType == nil || oType.Kind() != reflect.Ptr {
		return errors.Errorf("supplied output argument must be a pointer to a struct but is not pointer")
	}
	if oType.Elem().Kind() != reflect.Struct {
		return errors.Errorf("supplied output argument must be a pointer to a struct, but it is pointer to something else")
	}

	// AllSettings doesn't include env vars which don't have a default
	baseKeys := v.AllSettings()
	leafKeys := getKeysRecursively("", v.Get, baseKeys, oType.Elem())

	logger.Debugf("%+v", leafKeys)
	config := &mapstructure.DecoderConfig{
		ErrorUnused:      true,
		Metadata:         nil,
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			customDecodeHook,
			stringFromFileDecodeHook,
			pemBlocksFromFileDecodeHook,
		),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return err
	}
	return decoder.Decode(leafKeys)
}
