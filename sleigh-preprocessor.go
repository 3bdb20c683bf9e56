/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sleigh_preprocessor expands the @-directives of SLEIGH processor
// specifications: @define/@undef variables, @if/@ifdef/@ifndef conditionals,
// @include, and $(NAME) substitution.
package sleigh_preprocessor

import (
	"github.com/saruman9/sleigh-preprocessor/internal/expression"
	"github.com/saruman9/sleigh-preprocessor/internal/preprocessor"
)

type (
	Definitions = preprocessor.Definitions
	Location    = preprocessor.Location
	Options     = preprocessor.Options
	Result      = preprocessor.Result
	Error       = preprocessor.Error
)

// Error codes of *Error.
const (
	IOError                = preprocessor.IOError
	DirectiveError         = preprocessor.DirectiveError
	ConditionalError       = preprocessor.ConditionalError
	MissingIncludeError    = preprocessor.MissingIncludeError
	UndefinedVariableError = preprocessor.UndefinedVariableError
	ExprParseError         = preprocessor.ExprParseError
	ExprUndefinedError     = preprocessor.ExprUndefinedError
	IncludeDepthError      = preprocessor.IncludeDepthError
	ProcessingError        = preprocessor.ProcessingError
)

// Process preprocesses the file at path. defs is moved into the run; the
// final table comes back in Result.Definitions. A failed run produces no
// usable output.
func Process(path string, defs Definitions, opts Options) (*Result, error) {
	return preprocessor.Process(path, defs, opts)
}

// Evaluate evaluates an @if expression against defs.
func Evaluate(expr string, defs Definitions) (bool, error) {
	return expression.Evaluate(expr, defs)
}

// Resolve maps a 1-based output line back to its source file and line.
func Resolve(locations []Location, outputLine int) (file string, line int, ok bool) {
	return preprocessor.Resolve(locations, outputLine)
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code int) bool {
	return preprocessor.HasCode(err, code)
}
