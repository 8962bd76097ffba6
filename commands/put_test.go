package commands

import "testing"

func TestPut(t *testing.T) {
	goldenTestSuite{
		"literal":   {Lines: []string{"put hello"}},
		"quotation": {Lines: []string{"put ${ hello   world }$"}},
		"tuple":     {Lines: []string{"put -to @x 42", "put @x"}},
		"no-newline": {Lines: []string{
			"put -n a",
			"put -n -s b",
			"put c",
		}},
		"number": {Lines: []string{"put -# 7"}},
		"lifo": {Lines: []string{
			"put -to ~ one",
			"put -to ~ two",
			"put ~",
			"put ~",
		}},
		"const": {Lines: []string{"const *greeting hi", "put *greeting"}},
		"unknown-dash": {Lines: []string{
			"put -bogus x",
			"put after",
		}},
		"null-tuple": {Lines: []string{"tuple -null @n", "put @n"}},
		"file": {Lines: []string{
			"put -to @f out.txt",
			"put -tofile @f hello",
			"put -fromfile @f",
		}},
		"append": {Lines: []string{
			"put -to @f out.txt",
			"put -tofile @f a",
			"put -tofile @f -append b",
			"put -fromfile @f",
		}},
	}.Run(t)
}
