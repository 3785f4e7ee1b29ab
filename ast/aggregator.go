package ast

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// innerCalls holds the nested-call side channels attached to command,
// test, hook, and scenario-function records.
type innerCalls struct {
	CommandsUsed []CommandUsage
	OtherCalls   []OtherCall
}

// collectInnerCalls scans a function-valued subtree for command
// invocations and all other named calls.
//
// Unlike the top-level extraction walk this is a plain descent with no
// ancestor awareness: every call expression anywhere inside the body is
// considered. The usages/others flags select which side channel to
// populate.
func collectInnerCalls(body *sitter.Node, src []byte, usages, others bool) innerCalls {
	var out innerCalls
	if body == nil || (!usages && !others) {
		return out
	}

	stack := make([]*sitter.Node, 0, 64)
	stack = append(stack, body)

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}

		if node.Type() == jsNodeCallExpression {
			if path, ok := resolveCallee(node, src); ok {
				if usage, isUsage := buildCommandUsage(node, path, src); isUsage {
					if usages {
						out.CommandsUsed = append(out.CommandsUsed, usage)
					}
				} else if others && !strings.HasPrefix(path.String(), CommandPrefix) {
					out.OtherCalls = append(out.OtherCalls, buildOtherCall(node, path, src))
				}
			}
		}

		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			if child := node.Child(i); child != nil {
				stack = append(stack, child)
			}
		}
	}

	// The walk visits a chain's outermost call before its inner calls,
	// which inverts appearance order; records are contractually ordered
	// by where their name appears in the source.
	sortUsages(out.CommandsUsed)
	sort.SliceStable(out.OtherCalls, func(i, j int) bool {
		return out.OtherCalls[i].Start < out.OtherCalls[j].Start
	})

	return out
}

// sortUsages orders command usages by the source position of their
// trailing name identifier.
func sortUsages(usages []CommandUsage) {
	sort.SliceStable(usages, func(i, j int) bool {
		return usages[i].Start < usages[j].Start
	})
}

// buildCommandUsage classifies a resolved call as a command invocation
// and assembles its record.
//
// A call is a command usage when its dotted name begins with the cy.
// prefix and every intermediate chain segment was itself invoked:
// cy.a().b() chains, cy.get(...) direct calls. A bare property access in
// the middle (cy.state.foo()) means this is some other member access on
// the command root and the call is silently not a usage.
func buildCommandUsage(call *sitter.Node, path calleePath, src []byte) (CommandUsage, bool) {
	if len(path) < 2 || path[0].Name != "cy" || path[0].Invoked {
		return CommandUsage{}, false
	}

	chain := make([]string, 0, len(path)-2)
	for _, seg := range path[1 : len(path)-1] {
		if !seg.Invoked {
			return CommandUsage{}, false
		}
		chain = append(chain, seg.Name)
	}

	final := path.last()
	usage := CommandUsage{
		Name:      final.Name,
		Start:     int(final.Node.StartByte()),
		End:       int(call.EndByte()),
		Chain:     chain,
		Arguments: []Argument{},
	}

	args := call.ChildByFieldName("arguments")
	if args != nil && args.Type() == jsNodeArguments {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			usage.Arguments = append(usage.Arguments, Argument{
				Type:  arg.Type(),
				Start: int(arg.StartByte()),
				End:   int(arg.EndByte()),
			})
			if val, ok := materialize(arg, src); ok {
				if usage.LiteralArguments == nil {
					usage.LiteralArguments = make(map[int]any)
				}
				usage.LiteralArguments[i] = val
			}
		}
	}

	return usage, true
}

// buildOtherCall assembles the record for a resolvable non-command call.
func buildOtherCall(call *sitter.Node, path calleePath, src []byte) OtherCall {
	final := path.last()
	out := OtherCall{
		Name:      path.String(),
		Start:     int(final.Node.StartByte()),
		RootStart: int(call.StartByte()),
		End:       int(call.EndByte()),
		Arguments: []Argument{},
	}

	args := call.ChildByFieldName("arguments")
	if args != nil && args.Type() == jsNodeArguments {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			out.Arguments = append(out.Arguments, Argument{
				Type:  arg.Type(),
				Start: int(arg.StartByte()),
				End:   int(arg.EndByte()),
			})
		}
	}

	return out
}
