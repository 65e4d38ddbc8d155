package proptable_test

import (
	"fmt"
	"time"

	"github.com/hupe1980/proptable"
)

func Example() {
	price := proptable.New[float32](proptable.Float)
	price.SetFloat32(3, 19.995)
	price.SetFloat32(5, 4.5)

	s, _ := price.GetString(3)
	fmt.Println(s)

	_, ok := price.GetFloat32(4)
	fmt.Println(ok)

	lo, _ := price.Min()
	hi, _ := price.Max()
	fmt.Println(lo, hi)

	fmt.Println(price.Filter(0, 10).ToArray())

	// Output:
	// 20.00
	// false
	// 4.5 19.995
	// [5]
}

func Example_datetime() {
	ts := proptable.New[int64](proptable.Datetime, proptable.WithLocation(time.UTC))
	ts.SetInt64(0, 1700000000)

	s, _ := ts.GetString(0)
	fmt.Println(s)

	// Output:
	// 20231114T221320
}

func Example_setString() {
	level := proptable.New[int8](proptable.Int8)

	fmt.Println(level.SetString(0, "42"))
	fmt.Println(level.SetString(0, "300") != nil)

	v, _ := level.GetInt32(0)
	fmt.Println(v)

	// Output:
	// <nil>
	// true
	// 42
}
