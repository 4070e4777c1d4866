package utils

import (
	"flag"
	"strings"
)

// CommaSeparatedFlagsData is a flag.Value holding a list given on the command
// line as a single comma separated argument, such as "-tasks entropy,ngrams".
type CommaSeparatedFlagsData struct {
	Name   string
	Values []string
	Info   string
}

// CommaSeparatedFlags returns a list flag called name with the given default
// values. InitFlag must be called on the result before flag.Parse.
func CommaSeparatedFlags(name string, values []string, usage string) CommaSeparatedFlagsData {
	return CommaSeparatedFlagsData{
		Name:   name,
		Values: values,
		Info:   usage,
	}
}

// Set replaces the values with the comma separated elements of s.
func (csl *CommaSeparatedFlagsData) Set(s string) error {
	csl.Values = strings.Split(s, ",")
	return nil
}

func (csl *CommaSeparatedFlagsData) String() string {
	return strings.Join(csl.Values, ",")
}

// InitFlag registers the flag with the default flag set.
func (csl *CommaSeparatedFlagsData) InitFlag() {
	flag.Var(csl, csl.Name, csl.Info)
}
