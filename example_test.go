package typeguard_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/violation"
)

// ExampleNew shows a raise-mode function rejecting a bad argument before it runs.
func ExampleNew() {
	total, err := typeguard.New("total", func(xs any) int {
		n := 0
		for _, x := range xs.([]any) {
			n += x.(int)
		}
		return n
	}, typeguard.Signature{
		Params: []typeguard.Param{{Name: "xs", Type: descriptor.ListOf(descriptor.Of[int]())}},
		Return: descriptor.Of[int](),
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	res, err := total.Call(ctx, []any{1, 2, 3})
	fmt.Println(res.Value, err)

	_, err = total.Call(ctx, []any{1, "2"})
	var tv *violation.Error
	if errors.As(err, &tv) {
		fmt.Println(tv.Violations[0].Message())
	}

	// Output:
	// 6 <nil>
	// typing violation in function `total`: expected type of argument `xs` to be `int` (got `string`).
}

// ExampleWithDefer shows every violation of a call reported in one error.
func ExampleWithDefer() {
	point, err := typeguard.New("point", func(x, y any) {}, typeguard.Signature{
		Params: []typeguard.Param{
			{Name: "x", Type: descriptor.Of[float64]()},
			{Name: "y", Type: descriptor.Of[float64]()},
		},
	}, typeguard.WithDefer(true))
	if err != nil {
		log.Fatal(err)
	}

	_, err = point.Call(context.Background(), 1, "2")
	fmt.Println(err)

	// Output:
	//     + typing violation in function `point`: expected type of argument `x` to be `float64` (got `int`).
	//     + typing violation in function `point`: expected type of argument `y` to be `float64` (got `string`).
}

// ExampleWithMode_return shows violations handed back with the result.
func ExampleWithMode_return() {
	tv := descriptor.NewTypeVar("T")
	same, err := typeguard.New("same", func(a, b any) bool { return a == b }, typeguard.Signature{
		Params: []typeguard.Param{{Name: "a", Type: tv}, {Name: "b", Type: tv}},
		Return: descriptor.Of[bool](),
	}, typeguard.WithMode(violation.ModeReturn))
	if err != nil {
		log.Fatal(err)
	}

	res, err := same.Call(context.Background(), 1, "1")
	fmt.Println(res.Value, err, len(res.Violations))
	fmt.Println(res.Violations[0].Message())

	// Output:
	// false <nil> 1
	// typing violation in function `same`: expected type of argument `b` to be `int` (got `string`).
}
