package filter

import (
	"fmt"

	"github.com/arnodel/zstlines/record"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// compileWhere compiles a boolean expression over record fields.  Fields are
// only known at run time, so unknown names evaluate to nil rather than
// failing compilation.
func compileWhere(source string) (*vm.Program, error) {
	program, err := expr.Compile(source, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile where expression %q: %w", source, err)
	}
	return program, nil
}

func evalWhere(program *vm.Program, c *record.Comment) (bool, error) {
	output, err := expr.Run(program, c.Fields)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate where expression: %w", err)
	}
	ok, isBool := output.(bool)
	if !isBool {
		return false, fmt.Errorf("where expression returned %T, not bool", output)
	}
	return ok, nil
}
