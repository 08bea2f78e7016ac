// Package output writes the progress of aos commands to the terminal.
//
// A Printer prints prefixed action, detail, warning and error lines styled
// from the styles registry, and boxed tables through pterm. Color is used
// only when the output writer is a color terminal and NO_COLOR is unset.
//
// A Printer satisfies the reporter interfaces of the dependency walks and
// component commands; a Prompter asks for commit messages during publish.
package output
