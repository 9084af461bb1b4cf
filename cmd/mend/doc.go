// Mend is a CLI that batch-analyzes C# source files with LLM providers.
//
// It collects files from the given paths, sends each one through the
// configured provider with a category-driven review prompt, and writes a
// markdown and HTML improvement report per file, with run history kept in a
// local SQLite database.
//
// Usage:
//
//	mend analyze src/                 # analyze every .cs file under src/
//	mend analyze Service.cs --stream  # analyze one file, print chunks live
//	mend models list                  # show the model capability table
//	mend models check                 # verify credentials and connectivity
//	mend history list                 # show recent runs
//	mend config init                  # write a default config file
//
// See https://github.com/dkoh/mend for full documentation.
package main
