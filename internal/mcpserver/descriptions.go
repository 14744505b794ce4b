package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and what comes back.

func describeDetectLanguage() string {
	return `Identifies the programming language of a file name or a code snippet.

USE WHEN:
- A snippet arrives without a language and other tools need one
- Deciding which formatter or rule set applies to a file

INTERPRETING RESULTS:
- source "filename": the extension was recognized and decided the language
- source "content": keyword and pattern scoring over the code decided it
- source "none": nothing was conclusive and language is "auto"; the other tools then analyze the code as JavaScript

METRICS RETURNED:
- language: tag such as python, javascript, cpp
- name: display name such as Python or C++
- source: filename, content, or none`
}

func describeHighlight() string {
	return `Renders code as HTML with syntax-highlighting spans.

USE WHEN:
- Producing a highlighted snippet for a web page or report
- Inspecting how glint tokenizes a line

INTERPRETING RESULTS:
- Each token is wrapped in <span class="token KIND">, where KIND is comment, string, keyword, number, function, class, operator, punctuation, tag, attribute, selector, property, or value
- All other text is HTML-escaped, so the output is safe to embed
- Lines are joined with newlines; an empty language auto-detects from the code

METRICS RETURNED:
- The highlighted HTML text`
}

func describeDetectErrors() string {
	return `Finds likely syntax problems in a code snippet without compiling it.

USE WHEN:
- Checking generated or edited code before running it
- Explaining why a snippet fails to parse
- Reviewing style issues such as long lines or mixed indentation

INTERPRETING RESULTS:
- errors: problems that break the code (unclosed brackets, unterminated strings, missing colons in Python, unclosed HTML tags)
- warnings: likely mistakes or style issues (missing semicolons, long lines, == instead of ===, print statements)
- Line and column are 1-based; line 0 marks a whole-document finding
- Every diagnostic has a type and most carry a suggestion for the fix
- is_valid is true when there are no errors, even with warnings

METRICS RETURNED:
- errors, warnings: line, column, severity, type, message, suggestion
- is_valid, error_count, warning_count, summary`
}

func describeAnalyzeMetrics() string {
	return `Computes size, complexity and quality metrics for a code snippet.

USE WHEN:
- Estimating how hard a function or file is to maintain
- Comparing two versions of the same code
- Finding refactoring candidates

INTERPRETING RESULTS:
- cyclomatic_complexity > 10: many code paths, consider splitting
- complexity_level: Low, Medium, High, or Very High
- max_nesting above the configured limit: deeply nested code, consider early returns
- maintainability_index: 0-100, higher is better
- quality_level: Excellent, Good, Fair, or Needs Improvement
- overall: 0-100 combined score of complexity, maintainability and readability
- comment_ratio describes documentation density

METRICS RETURNED:
- basic: total, code, comment and empty lines, characters, average line length
- complexity: control structures, max nesting, cyclomatic complexity
- quality: maintainability, readability, quality issues and their breakdown
- structure: functions, classes, imports, function lengths, main function
- issues: findings by severity and category (long lines, deep nesting, missing semicolons, undefined names)`
}

func describeFormatCode() string {
	return `Formats code with consistent indentation and spacing.

USE WHEN:
- Cleaning up generated code before showing or saving it
- Normalizing indentation after an edit
- Repairing almost-JSON (single quotes, bare keys, trailing commas)

INTERPRETING RESULTS:
- The formatted code is returned as plain text
- If formatting fails the input comes back unchanged
- JSON that cannot be repaired is returned unchanged
- Strings and comments are never rewritten

METRICS RETURNED:
- The formatted code`
}

func describeValidateCode() string {
	return `Runs quick validity checks over a code snippet.

USE WHEN:
- Confirming that JSON or YAML parses
- A fast bracket balance check before deeper analysis

INTERPRETING RESULTS:
- invalid_json / invalid_yaml: the document does not parse
- unbalanced_brackets: a closing bracket has no opener
- unclosed_brackets: an opening bracket is never closed
- is_valid is true when no issue was found

METRICS RETURNED:
- is_valid
- issues: type, message, suggestion`
}

func describeCheckPaths() string {
	return `Checks source files on disk for syntax problems.

USE WHEN:
- Reviewing a directory or a list of files in one call
- Gating a change on the absence of syntax errors

INTERPRETING RESULTS:
- Files are discovered recursively, honoring .gitignore and the configured exclusions
- Files named explicitly are always checked when their language is supported
- Each file reports the same errors and warnings as detect_errors
- error_count > 0 means at least one file has a blocking problem

METRICS RETURNED:
- files: path, language, result
- file_count, error_count, warning_count`
}
