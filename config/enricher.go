// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/acquirecloud/timeout/errors"
	"github.com/acquirecloud/timeout/logging"
)

type (
	// Enricher interface provides some helper functions to work with the configuration structures.
	// It keeps a structure value by the type T and allows to load its value from a file,
	// apply other values from other enricher, created for the same type T, and apply environment
	// variables to the structure.
	//
	// The following contract is applied to the type T:
	// - only the exported fields (started from the capital letter) will be updated
	// - the fields, may have JSON annotation, where the JSON field name value can be used as an alias,
	//   for example, FieldA int `json:"abc"` <- the field may be addressed either as "fieldA" or "abc"
	// - all the fields' names are case-insensitive, so values FIELDA, fielda, ABC, abc etc. will match
	//   to the fields in the previous example
	// - the reading from YAML files is defined by the same (JSON name) annotations
	Enricher[T any] interface {
		// LoadFromFile allows to load the structure's fields from the YAML or JSON file.
		// Which format is used, is defined by the file extension (.json or .yaml)
		LoadFromFile(fileName string) error

		// LoadFromJSONFile loads the content from the jsonFileName and tries to unmarshal
		// it as JSON. If the jsonFileName is empty, nothing happens and the function
		// immediately returns nil.
		LoadFromJSONFile(jsonFileName string) error

		// LoadFromYAMLFile loads the content from the yamlFileName and tries to unmarshal
		// it as YAML. If the yamlFileName is empty, nothing happens and the function
		// immediately returns nil.
		LoadFromYAMLFile(yamlFileName string) error

		// ApplyOther allows applying the T structure value by another enricher. The deep
		// apply will be done, which means that all fields from the enricher e, which are not
		// equal to its zero values will overwrite the values of the current enricher value.
		ApplyOther(e Enricher[T]) error

		// ApplyEnvVariables will scan the existing environment variables and try to apply that
		// one, which name starts from prefix. The fields values will be separated by sep. The
		// variable will represent a path to the required value in the target structure.
		//
		// Example: for the call ApplyEnvVariables("MyServer", "_") the variable
		// MYSERVER_INNERS_VAL will address the field InnerS.Val of the structure T. The
		// variables names are case-insensitive. The values should be either plain strings
		// for simple types or JSON values for the complex ones (slices, maps, structs).
		ApplyEnvVariables(prefix, sep string) error

		// ApplyKeyValues allows to apply the key-value pairs to the structure. The key-value
		// pairs assignment rules are the same as for the ApplyEnvVariables function.
		ApplyKeyValues(prefix, sep string, keyValues map[string]string)

		// Value returns the enricher current value
		Value() T
	}

	enricher[T any] struct {
		log logging.Logger
		val T
	}
)

// NewEnricher constructs new Enricher for the type T
func NewEnricher[T any](val T) Enricher[T] {
	tp := reflect.TypeOf(val)
	if tp.Kind() != reflect.Struct {
		panic(fmt.Sprintf("only structs are acceptable in the Enricher, but got the type %s", tp.Kind()))
	}
	return newEnricher(val)
}

func newEnricher[T any](val T) *enricher[T] {
	e := new(enricher[T])
	e.val = val
	e.log = logging.NewLogger("config.enricher." + reflect.TypeOf(val).Name())
	return e
}

func (e *enricher[T]) LoadFromFile(fileName string) error {
	if fileName == "" {
		e.log.Infof("don't load data from a file name, the file name is not provided")
		return nil
	}

	fn := strings.Trim(strings.ToLower(fileName), " ")
	switch {
	case strings.HasSuffix(fn, ".yaml") || strings.HasSuffix(fn, ".yml"):
		return e.LoadFromYAMLFile(fileName)
	case strings.HasSuffix(fn, ".json"):
		return e.LoadFromJSONFile(fileName)
	default:
		return fmt.Errorf("cannot recognize file format %s, expecting .json or .yaml: %w", fileName, errors.ErrInvalid)
	}
}

func (e *enricher[T]) LoadFromJSONFile(jsonFileName string) error {
	if jsonFileName == "" {
		e.log.Infof("the function LoadFromJSONFile() is called with empty file name value, do nothing")
		return nil
	}

	e.log.Infof("reading JSON data from %s", jsonFileName)
	buf, err := os.ReadFile(jsonFileName)
	if err != nil {
		return fmt.Errorf("could not read file %s: %w", jsonFileName, err)
	}
	if err = json.Unmarshal(buf, &e.val); err != nil {
		return fmt.Errorf("could not unmarshal json file(%s): %w", jsonFileName, err)
	}
	return nil
}

func (e *enricher[T]) LoadFromYAMLFile(yamlFileName string) error {
	if yamlFileName == "" {
		e.log.Infof("the function LoadFromYAMLFile() is called with empty file name value, do nothing")
		return nil
	}

	e.log.Infof("reading YAML data from %s", yamlFileName)
	buf, err := os.ReadFile(yamlFileName)
	if err != nil {
		return fmt.Errorf("could not read file %s: %w", yamlFileName, err)
	}
	if err = yaml.Unmarshal(buf, &e.val); err != nil {
		return fmt.Errorf("could not unmarshal yaml file(%s): %w", yamlFileName, err)
	}
	return nil
}

func (e *enricher[T]) ApplyOther(other Enricher[T]) error {
	otherE, ok := other.(*enricher[T])
	if !ok {
		return fmt.Errorf("unsupported enricher implementation %T: %w", other, errors.ErrInvalid)
	}
	return e.applyValues(reflect.ValueOf(&otherE.val), reflect.ValueOf(&e.val))
}

func (e *enricher[T]) ApplyEnvVariables(prefix, sep string) error {
	e.log.Infof("apply environment variables with the prefix %s", prefix)
	env := make(map[string]string)
	for _, v := range os.Environ() {
		parts := strings.SplitN(v, "=", 2)
		if len(parts) != 2 {
			e.log.Warnf("the environment variable %s is not valid, skip it", v)
			continue
		}
		env[parts[0]] = parts[1]
	}
	e.ApplyKeyValues(prefix, sep, env)
	return nil
}

func (e *enricher[T]) ApplyKeyValues(prefix, sep string, keyValues map[string]string) {
	sep = strings.ToUpper(sep)
	envPfx := makeEnvPrefix(prefix, sep)
	for key, value := range keyValues {
		key := strings.ToUpper(key)
		if !strings.HasPrefix(key, envPfx) {
			continue
		}
		ok := assignStruct(reflect.ValueOf(&e.val).Elem(), key[len(envPfx):], sep, value)
		if ok {
			e.log.Debugf("updating target value by the key=%s, value=%s", key, value)
		} else {
			e.log.Debugf("the key=%s with value=%s cannot be applied (no matched fields)", key, value)
		}
	}
}

func (e *enricher[T]) Value() T {
	return e.val
}

func makeEnvPrefix(prefix, sep string) string {
	if prefix == "" {
		return ""
	}
	return strings.ToUpper(prefix) + sep
}

// applyValues copies the non-zero fields of other to target recursively. Both the
// values must be pointers to the same type.
func (e *enricher[T]) applyValues(other, target reflect.Value) error {
	if other.IsZero() {
		return nil
	}
	if other.Type().Kind() == reflect.Ptr {
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}
		return e.applyValues(other.Elem(), target.Elem())
	}
	if other.Type().Kind() != reflect.Struct {
		target.Set(other)
		return nil
	}
	for i := 0; i < other.NumField(); i++ {
		if !target.Field(i).CanSet() {
			continue
		}
		if err := e.applyValues(other.Field(i), target.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

// assignStruct tries to resolve the key path (segments separated by sep) against the
// struct value v and set the leaf field from the string value. It returns true if a
// field was matched and assigned.
func assignStruct(v reflect.Value, key, sep string, value string) bool {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			if !v.CanSet() {
				return false
			}
			nv := reflect.New(v.Type().Elem())
			if !assignStruct(nv.Elem(), key, sep, value) {
				return false
			}
			v.Set(nv)
			return true
		}
		return assignStruct(v.Elem(), key, sep, value)
	}
	if v.Kind() != reflect.Struct || key == "" {
		return false
	}
	tp := v.Type()
	for i := 0; i < tp.NumField(); i++ {
		fld := tp.Field(i)
		if !v.Field(i).CanSet() {
			continue
		}
		for _, name := range []string{strings.ToUpper(fld.Name), getAlias(fld.Tag)} {
			if name == "" || name == "-" {
				continue
			}
			if key == name {
				return setFieldValueByString(v.Field(i), value) == nil
			}
			if strings.HasPrefix(key, name+sep) {
				if assignStruct(v.Field(i), key[len(name)+len(sep):], sep, value) {
					return true
				}
			}
		}
	}
	return false
}

// getAlias returns the upper-cased json tag name of the field, or "" if no alias defined
func getAlias(tag reflect.StructTag) string {
	jt, ok := tag.Lookup("json")
	if !ok {
		return ""
	}
	name := strings.Split(jt, ",")[0]
	return strings.ToUpper(name)
}

// setFieldValueByString assigns the string value to the field f. The plain, not
// quoted strings are assigned to the string fields as is, any other values are
// treated as JSON
func setFieldValueByString(f reflect.Value, value string) error {
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			f.Set(reflect.New(f.Type().Elem()))
		}
		return setFieldValueByString(f.Elem(), value)
	}
	if f.Kind() == reflect.String && !isQuoted(value) {
		f.SetString(value)
		return nil
	}
	if !f.CanAddr() {
		return fmt.Errorf("the field value is not addressable: %w", errors.ErrInvalid)
	}
	return json.Unmarshal([]byte(value), f.Addr().Interface())
}

// isQuoted returns true if the value is the double-quoted string
func isQuoted(value string) bool {
	v := strings.TrimSpace(value)
	return len(v) > 1 && strings.HasPrefix(v, "\"") && strings.HasSuffix(v, "\"")
}
