// Package store 放各存储实现共用的反射小工具
package store

import (
	"fmt"
	"reflect"
	"strings"
)

// KeyOf 字段在 Filter/Update 中的 key：取 bson 名，"_id" 记作 "id"
func KeyOf(f reflect.StructField) string {
	tag := f.Tag.Get("bson")
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	if name == "_id" {
		return "id"
	}
	return name
}

func structValue(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("store: want non-nil pointer, got %T", obj)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("store: want pointer to struct, got %T", obj)
	}
	return v, nil
}

func fieldByKey(v reflect.Value, key string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		// 未导出字段跳过
		if f.PkgPath != "" {
			continue
		}
		if KeyOf(f) == key {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Get 按 key 读字段
func Get(obj any, key string) (any, bool) {
	v, err := structValue(obj)
	if err != nil {
		return nil, false
	}
	fv, ok := fieldByKey(v, key)
	if !ok {
		return nil, false
	}
	return fv.Interface(), true
}

// Set 按 key 写字段，允许同类底层类型之间转换（string -> Role 等）
func Set(obj any, key string, val any) error {
	v, err := structValue(obj)
	if err != nil {
		return err
	}
	fv, ok := fieldByKey(v, key)
	if !ok || !fv.CanSet() {
		return fmt.Errorf("store: unknown field %q on %T", key, obj)
	}
	rv := reflect.ValueOf(val)
	if !rv.IsValid() {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	switch {
	case rv.Type().AssignableTo(fv.Type()):
		fv.Set(rv)
	case sameFamily(rv.Kind(), fv.Kind()) && rv.Type().ConvertibleTo(fv.Type()):
		fv.Set(rv.Convert(fv.Type()))
	default:
		return fmt.Errorf("store: cannot assign %T to field %q", val, key)
	}
	return nil
}

// Match 判断 obj 是否满足等值 Filter
func Match(obj any, f map[string]any) bool {
	for k, want := range f {
		got, ok := Get(obj, k)
		if !ok || !equal(got, want) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if !av.IsValid() || !bv.IsValid() {
		return av.IsValid() == bv.IsValid()
	}
	switch {
	case av.Kind() == reflect.String && bv.Kind() == reflect.String:
		return av.String() == bv.String()
	case isNumber(av.Kind()) && isNumber(bv.Kind()):
		return toFloat(av) == toFloat(bv)
	}
	return reflect.DeepEqual(a, b)
}

func sameFamily(a, b reflect.Kind) bool {
	if a == b {
		return true
	}
	return isNumber(a) && isNumber(b)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
