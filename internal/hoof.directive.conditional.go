package internal

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ifDirective selects one branch of an if/elif/else chain.
type ifDirective struct{}

func (ifDirective) Name() string { return TagIf }

func (ifDirective) Execute(ctx context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	chain := collectIfChain(el)

	var chosen *html.Node
	for i, candidate := range chain {
		if IsElement(candidate, TagElse) || w.conditionHolds(rs, candidate) {
			chosen = candidate
			w.logger.Debug(LogMsgBranchSelected,
				zap.String(LogFieldTag, candidate.Data),
				zap.Int(LogFieldBranch, i),
			)
			break
		}
	}

	if chosen == nil {
		w.logger.Debug(LogMsgNoBranchSelected, zap.Int(LogFieldIterations, len(chain)))
		for _, candidate := range chain {
			Remove(candidate)
		}
		return nil
	}

	fragment := CloneChildren(chosen)
	for _, candidate := range chain[1:] {
		Remove(candidate)
	}
	return w.WalkFragment(ctx, rs, el, fragment)
}

// collectIfChain returns el followed by the elif/else siblings that
// belong to it. Blank text and comments between them are skipped; the
// chain ends at any other node and after an else.
func collectIfChain(el *html.Node) []*html.Node {
	chain := []*html.Node{el}
	for sib := el.NextSibling; sib != nil; sib = sib.NextSibling {
		if IsBlank(sib) {
			continue
		}
		if IsElement(sib, TagElif) {
			chain = append(chain, sib)
			continue
		}
		if IsElement(sib, TagElse) {
			chain = append(chain, sib)
		}
		break
	}
	return chain
}

// conditionHolds evaluates the expression attribute of el. A missing
// attribute or a failed evaluation counts as false.
func (w *Walker) conditionHolds(rs *RenderState, el *html.Node) bool {
	expr, ok := GetAttr(el, AttrExpression)
	if !ok {
		return false
	}
	return isTruthy(w.EvaluateLenient(rs, expr))
}

// caseDirective selects the first when child equal to the subject, or
// the first default child.
type caseDirective struct{}

func (caseDirective) Name() string { return TagCase }

func (caseDirective) Execute(ctx context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	var subject any
	if expr, ok := GetAttr(el, AttrExpression); ok {
		subject = w.EvaluateLenient(rs, expr)
	}

	var chosen *html.Node
	for c := el.FirstChild; c != nil && chosen == nil; c = c.NextSibling {
		switch {
		case IsElement(c, TagDefault):
			chosen = c
		case IsElement(c, TagWhen):
			expr, ok := GetAttr(c, AttrExpression)
			if !ok {
				continue
			}
			v, err := w.config.Evaluator.Evaluate(expr, rs.Scope)
			if err != nil {
				w.logger.Debug(LogMsgEvalSwallowed, zap.String(LogFieldExpression, expr), zap.Error(err))
				continue
			}
			if compareEqual(subject, v) {
				chosen = c
			}
		}
	}

	if chosen == nil {
		w.logger.Debug(LogMsgNoBranchSelected, zap.String(LogFieldTag, TagCase))
		Remove(el)
		return nil
	}

	w.logger.Debug(LogMsgBranchSelected, zap.String(LogFieldTag, chosen.Data))
	return w.WalkFragment(ctx, rs, el, CloneChildren(chosen))
}

// strayDirective removes elements that are only meaningful inside
// another directive: elif/else without an if, when/default outside a
// case, and extends after inheritance resolution.
type strayDirective struct {
	tag string
}

func (d strayDirective) Name() string { return d.tag }

func (d strayDirective) Execute(_ context.Context, w *Walker, _ *RenderState, el *html.Node) error {
	w.logger.Debug(LogMsgStrayRemoved, zap.String(LogFieldTag, d.tag))
	Remove(el)
	return nil
}
