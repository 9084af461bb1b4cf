package review

import (
	"fmt"
	"log/slog"
	"strings"
)

// systemPrompt defines the reviewer role. It is prepended to every review
// prompt.
const systemPrompt = `You are an expert C# code reviewer. Analyze the submitted code and produce an improved version that fixes its problems.

Follow these principles:
1. Keep class and method names, but you may restructure internals
2. To remove hardcoding, add IConfiguration, constructor injection, or whatever structure is needed
3. Add null checks, exception handling, and using statements where they are missing
4. Security issues (SQL injection and similar) must always be fixed
5. Output C# syntax only; never another language
6. Output pure C# code without markdown code fences
7. XML documentation comments (///) are part of the code: add them to every public class and method
8. Do not output prose or explanations

Important: you may add fields, constructors, and properties to a class when the improvement requires them.`

// OutputFormat selects what the model is asked to produce.
type OutputFormat string

const (
	FormatImprovedCode OutputFormat = "improved_code"
	FormatCodeComments OutputFormat = "code_comments"
	FormatFlowDiagram  OutputFormat = "flow_diagram"
)

// ParseFormat validates an output-format identifier.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatImprovedCode, FormatCodeComments, FormatFlowDiagram:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format: %q", s)
}

var outputInstructions = map[OutputFormat]string{
	FormatImprovedCode: `Output an improved version of the submitted code.

Rules:
1. Keep class, method, and field names; add new fields, constructors, or properties when needed
2. Replace hardcoded values with IConfiguration lookups and constructor injection
3. Add null checks, using statements, and try-catch blocks where missing
4. Use parameterized queries instead of string-concatenated SQL
5. Add XML documentation comments (///) to every public class and method
6. Output pure C# code only, without markdown fences or explanatory text
7. The output must be valid C# syntax`,

	FormatCodeComments: `Add XML documentation comments to the submitted code.

Rules:
- /// <summary> on every class and method
- /// <param> for each parameter
- /// <returns> for return values
- keep the code itself unchanged

Output the commented code.`,

	FormatFlowDiagram: `Express the execution flow of the submitted code as a Mermaid diagram.

Output format:
` + "```mermaid" + `
graph TD
    A[Start] --> B[...]
    B --> C[...]
` + "```" + `

Show conditionals, loops, and method calls explicitly.`,
}

// fewShotExample pairs a category with a before/after snippet.
type fewShotExample struct {
	category Category
	before   string
	after    string
}

var fewShotExamples = []fewShotExample{
	{
		category: NullReference,
		before: `public void ProcessData(string data)
{
    var result = data.ToUpper();
    Console.WriteLine(result);
}`,
		after: `public void ProcessData(string data)
{
    if (string.IsNullOrEmpty(data))
        throw new ArgumentNullException(nameof(data));

    var result = data.ToUpper();
    Console.WriteLine(result);
}`,
	},
	{
		category: ResourceManagement,
		before: `public void ReadFile(string path)
{
    StreamReader reader = new StreamReader(path);
    string content = reader.ReadToEnd();
    Console.WriteLine(content);
}`,
		after: `public void ReadFile(string path)
{
    using (var reader = new StreamReader(path))
    {
        string content = reader.ReadToEnd();
        Console.WriteLine(content);
    }
}`,
	},
	{
		category: ExceptionHandling,
		before: `public int Divide(int a, int b)
{
    return a / b;
}`,
		after: `public int Divide(int a, int b)
{
    if (b == 0)
        throw new DivideByZeroException("Divisor must not be zero.");

    return a / b;
}`,
	},
	{
		category: CodeDocumentation,
		before: `public class UserService
{
    public User GetUser(int userId)
    {
        return database.Find(userId);
    }
}`,
		after: `/// <summary>
/// Service for managing users.
/// </summary>
public class UserService
{
    /// <summary>
    /// Looks up a user by id.
    /// </summary>
    /// <param name="userId">Id of the user to look up.</param>
    /// <returns>The user, or null when not found.</returns>
    /// <exception cref="ArgumentException">When userId is not positive.</exception>
    public User GetUser(int userId)
    {
        if (userId <= 0)
            throw new ArgumentException("Invalid user id.", nameof(userId));

        return database.Find(userId);
    }
}`,
	},
	{
		category: HardcodingToConfig,
		before: `public class DatabaseHelper
{
    public SqlConnection GetConnection()
    {
        var connectionString = "Server=localhost;Database=MyDB;User Id=admin;Password=admin123;";
        return new SqlConnection(connectionString);
    }
}`,
		after: `public class DatabaseHelper
{
    private readonly IConfiguration _configuration;

    public DatabaseHelper(IConfiguration configuration)
    {
        _configuration = configuration;
    }

    public SqlConnection GetConnection()
    {
        var connectionString = _configuration.GetConnectionString("DefaultConnection")
            ?? throw new InvalidOperationException("Connection string is not configured.");
        return new SqlConnection(connectionString);
    }
}`,
	},
}

// maxExamples caps few-shot examples per prompt to keep token usage down.
const maxExamples = 2

// Builder assembles review prompts for a fixed model. A context budget of
// zero disables token-based example dropping.
type Builder struct {
	model         string
	contextBudget int
	format        OutputFormat
	log           *slog.Logger
}

// NewBuilder constructs a Builder. contextBudget is the token allowance
// for the whole prompt, normally the model's context window minus its
// output cap.
func NewBuilder(model string, contextBudget int, format OutputFormat, log *slog.Logger) *Builder {
	if format == "" {
		format = FormatImprovedCode
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Builder{model: model, contextBudget: contextBudget, format: format, log: log}
}

// Build produces the full request payload for one file. Deterministic for
// fixed template data; never fails. When the estimated token count exceeds
// the context budget the few-shot examples are dropped.
func (b *Builder) Build(code string, categories []Category) string {
	prompt := b.build(code, categories, true)
	if b.contextBudget > 0 {
		if est := EstimateTokens(prompt, b.model); est > b.contextBudget {
			b.log.Debug("dropping few-shot examples", "estimated", est, "budget", b.contextBudget)
			prompt = b.build(code, categories, false)
		}
	}
	return prompt
}

func (b *Builder) build(code string, categories []Category, includeExamples bool) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")

	if len(categories) > 0 {
		sb.WriteString("Focus the review on these areas:\n")
		for _, c := range categories {
			t := categoryTemplates[c]
			fmt.Fprintf(&sb, "\n- %s: %s\n", t.name, t.description)
			for _, rule := range t.rules {
				fmt.Fprintf(&sb, "  - %s\n", rule)
			}
		}
	}

	if includeExamples && len(categories) > 0 {
		selected := make(map[Category]bool, len(categories))
		for _, c := range categories {
			selected[c] = true
		}
		count := 0
		for _, ex := range fewShotExamples {
			if !selected[ex.category] || count >= maxExamples {
				continue
			}
			if count == 0 {
				sb.WriteString("\nExamples:\n")
			}
			fmt.Fprintf(&sb, "\n[%s]\nBefore:\n%s\n\nAfter:\n%s\n",
				categoryTemplates[ex.category].name, ex.before, ex.after)
			count++
		}
	}

	fmt.Fprintf(&sb, "\nCode to analyze:\n```csharp\n%s\n```\n", code)
	sb.WriteString("\n")
	sb.WriteString(outputInstructions[b.format])
	return sb.String()
}
