package css_test

import (
	"errors"
	"fmt"

	"cssb/css"
)

func ExampleCombine() {
	sel := css.Combine(
		css.Element("div").ID("main"),
		"+",
		css.Element("table").ID("data"),
	)
	text, err := sel.Stringify()
	fmt.Println(text, err)
	// Output: div#main + table#data <nil>
}

func ExampleSelector_Stringify() {
	sel := css.Element("a").Attr(`href$=".png"`).PseudoClass("focus")
	first, _ := sel.Stringify()
	second, _ := sel.Stringify()
	fmt.Printf("%q %q\n", first, second)
	// Output: "a[href$=\".png\"]:focus" ""
}

func ExampleSelector_Err() {
	sel := css.Class("container").ID("main")
	fmt.Println(errors.Is(sel.Err(), css.ErrOutOfOrder))
	// Output: true
}
