package audio

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Props stores instrument parameters that can be read without locks. All properties
// should be registered before any reads take place.
type Props struct {
	properties map[string]*atomic.Value
	setters    map[string]setter
}

func NewProps() *Props {
	return &Props{
		properties: make(map[string]*atomic.Value),
		setters:    make(map[string]setter),
	}
}

// Set updates the property with value. The key has to be registered first using Register.
func (p *Props) Set(key string, value interface{}) error {
	prop, ok := p.properties[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	set, ok := p.setters[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	if err := set(value, prop); err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	return nil
}

func (p *Props) Get(key string) (interface{}, error) {
	prop, ok := p.properties[key]
	if !ok {
		return nil, fmt.Errorf("unknown property %s", key)
	}
	return prop.Load(), nil
}

// Keys returns the registered property names in sorted order.
func (p *Props) Keys() []string {
	keys := make([]string, 0, len(p.properties))
	for k := range p.properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register adds a new property.
func (p *Props) Register(key string, set setter, init interface{}) (*atomic.Value, error) {
	var prop atomic.Value
	p.properties[key] = &prop
	p.setters[key] = set
	return &prop, set(init, &prop)
}

func (p *Props) MustRegister(key string, set setter, init interface{}) *atomic.Value {
	if prop, err := p.Register(key, set, init); err != nil {
		panic(err)
	} else {
		return prop
	}
}

type setter func(val interface{}, dest *atomic.Value) error

func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("value is not a float64: %v", v)
	}
}

func setFloat64(min, max float64) setter {
	return func(v interface{}, dest *atomic.Value) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		if f < min || f > max {
			return fmt.Errorf("property value is not in valid range %v - %v: %v", min, max, f)
		}
		dest.Store(f)
		return nil
	}
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("value is not an int: %v", v)
	}
}

func setInt(min, max int) setter {
	return func(v interface{}, dest *atomic.Value) error {
		n, err := toInt(v)
		if err != nil {
			return err
		}
		if n < min || n > max {
			return fmt.Errorf("property value is not in valid range %v - %v: %v", min, max, n)
		}
		dest.Store(n)
		return nil
	}
}

// clampInt stores ints outside [min, max] as the nearest bound.
func clampInt(min, max int) setter {
	return func(v interface{}, dest *atomic.Value) error {
		n, err := toInt(v)
		if err != nil {
			return err
		}
		if n < min {
			n = min
		} else if n > max {
			n = max
		}
		dest.Store(n)
		return nil
	}
}
