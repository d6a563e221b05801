package config_test

import (
	"fmt"

	"github.com/quantfoundry/treeconf/pkg/config"
)

func ExampleNew() {
	c := config.New()
	c.MustSet("nrows", 10000)
	c.MustSet(config.Path{"read_data", "file_name"}, "prices.csv")

	fmt.Println(c)
	// Output:
	// nrows: 10000
	// read_data:
	//   file_name: prices.csv
}

func ExampleConfig_Get() {
	c := config.New()
	c.MustSet(config.Path{"model", "alpha"}, 0.5)

	v, err := c.GetWith(config.Path{"model", "alpha"}, config.ReportNone)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(v)
	// Output:
	// 0.5
}

func ExampleConfig_Update() {
	base := config.New()
	base.MustSet("nrows", 10000)

	overrides := config.New()
	overrides.MustSet("nrows", 500)
	overrides.MustSet("fast", true)

	if err := base.UpdateWith(overrides, config.UpdateOverwrite); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(base)
	// Output:
	// nrows: 500
	// fast: True
}

func ExampleConfig_Flatten() {
	c := config.New()
	c.MustSet("nrows", 10000)
	c.MustSet(config.Path{"read_data", "file_name"}, "prices.csv")

	for _, entry := range c.Flatten() {
		fmt.Printf("%s = %v\n", entry.Path, entry.Value)
	}
	// Output:
	// nrows = 10000
	// read_data.file_name = prices.csv
}

func ExampleConfig_Serialize() {
	c := config.New()
	c.MustSet("nrows", 10000)
	c.MustSet(config.Path{"read_data", "file_name"}, "prices.csv")

	text, err := c.Serialize(true)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(text)

	parsed, err := config.Parse(text)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(parsed.Equal(c))
	// Output:
	// Config([('nrows', 10000), ('read_data', Config([('file_name', 'prices.csv')]))])
	// true
}

func ExampleConfig_MarkReadOnly() {
	c := config.New()
	c.MustSet("nrows", 10000)
	c.MarkReadOnly(true)

	err := c.Set("nrows", 1)
	fmt.Println(err != nil)
	// Output:
	// true
}
