// Package tool runs the program under test.
//
// The harness only sees the Tool interface: bytes in on stdin, arguments on
// the command line, and stdout, stderr and exit status back. ExecTool is the
// subprocess-backed implementation; tests substitute fakes.
package tool
