// Copyright 2025 Open3FS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package patch substitutes a value for the duration of a test and restores it
afterwards.

A Patch names a slot (a struct field, a map entry or a variable) and the
substitute to install there. Declared as an exported field of a suite that
embeds patch.Suite, it is started before every test method and stopped after
it, whether the test passed, failed or panicked:

	type herp struct {
		Derp int
		Work func() string
	}

	var theHerp = &herp{Derp: 0, Work: func() string { return "No; I'm lazy" }}

	type herpSuite struct {
		patch.Suite

		PatchDerp *patch.Patch
		PatchWork *patch.Patch
	}

	func TestHerp(t *testing.T) {
		suite.Run(t, &herpSuite{
			PatchDerp: patch.Object(theHerp, "Derp", patch.Value(1)),
			PatchWork: patch.Object(theHerp, "Work", patch.ReturnValue("Yes, sir.")),
		})
	}

	func (s *herpSuite) TestWork() {
		s.Equal("Yes, sir.", theHerp.Work())
		s.PatchWork.Mock().AssertCalledOnceWith(s.T())
	}

Function slots receive a recording substitute whose calls go through an
embedded testify mock.Mock, so the usual AssertCalled family works on the
handle returned by Mock. A fresh handle is made on every start, so call
history never carries over between tests.

The handle can also be bound to a field of the suite with a struct tag:

	PatchWork *patch.Patch
	Work      *patch.Mock `patch:"PatchWork"`

Outside a suite, Use starts a patch and stops it with t.Cleanup:

	m := patch.Use(t, patch.Var(&timeNow, patch.ReturnValue(fixed)))

Patches can also be addressed by a dotted name registered with Register, or
relative to the running suite through Self:

	PatchPower: patch.Self.Attr("Goku").Attr("PowerLevel").Patch(patch.ReturnValue("Over 9000")),

Go cannot replace methods of a named type at run time; only addressable
values can be patched.
*/
package patch
