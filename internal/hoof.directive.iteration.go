package internal

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// forRange is a parsed for query.
type forRange struct {
	name      string
	start     float64
	end       float64
	inclusive bool
}

// values returns the loop values in order, stepping by one toward end.
func (r forRange) values() []float64 {
	var out []float64
	if r.start <= r.end {
		for i := r.start; i < r.end || (r.inclusive && i == r.end); i++ {
			out = append(out, i)
		}
		return out
	}
	for i := r.start; i > r.end || (r.inclusive && i == r.end); i-- {
		out = append(out, i)
	}
	return out
}

// parseForQuery parses "name from A through|thru|to B". Bounds are
// numeric literals, placeholders or expressions, resolved once here.
func (w *Walker) parseForQuery(rs *RenderState, query string) (forRange, bool) {
	fields := strings.Fields(query)
	if len(fields) < 5 || !strings.EqualFold(fields[1], ForKeywordFrom) {
		return forRange{}, false
	}

	r := forRange{name: strings.TrimPrefix(fields[0], string(ExprVariableSigil))}
	if r.name == StringValueEmpty {
		return forRange{}, false
	}

	split := -1
	for i := 3; i < len(fields)-1; i++ {
		switch strings.ToLower(fields[i]) {
		case ForKeywordThrough, ForKeywordThru:
			r.inclusive = true
			split = i
		case ForKeywordTo:
			split = i
		}
		if split > 0 {
			break
		}
	}
	if split < 0 {
		return forRange{}, false
	}

	var ok bool
	if r.start, ok = w.resolveBound(rs, strings.Join(fields[2:split], " ")); !ok {
		return forRange{}, false
	}
	if r.end, ok = w.resolveBound(rs, strings.Join(fields[split+1:], " ")); !ok {
		return forRange{}, false
	}
	return r, true
}

func (w *Walker) resolveBound(rs *RenderState, bound string) (float64, bool) {
	if n, err := strconv.ParseFloat(bound, FloatBitSize64); err == nil {
		return n, true
	}
	v, err := w.config.Evaluator.Evaluate(bound, rs.Scope)
	if err != nil {
		return 0, false
	}
	if n, ok := toNumber(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), FloatBitSize64)
		return n, err == nil
	}
	return 0, false
}

// expandPass binds vars, renders one copy of el's children and appends
// the result to out. The binding is gone when it returns.
func (w *Walker) expandPass(ctx context.Context, rs *RenderState, el, out *html.Node, vars map[string]any) error {
	rs.PushScope(vars)
	defer rs.PopScope()

	clone := CloneChildren(el)
	if err := w.SubstituteBound(rs, clone); err != nil {
		return err
	}
	if err := w.Walk(ctx, rs, clone); err != nil {
		return err
	}
	// content pulled in by nested includes still sees the loop binding
	if err := w.SubstituteBound(rs, clone); err != nil {
		return err
	}
	MoveChildren(out, clone)
	return nil
}

// forDirective repeats its children over a numeric range.
type forDirective struct{}

func (forDirective) Name() string { return TagFor }

func (forDirective) Execute(ctx context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	query, _ := GetAttr(el, AttrExpression)
	r, ok := w.parseForQuery(rs, query)
	if !ok {
		w.logger.Debug(LogMsgLoopMalformed, zap.String(LogFieldTag, TagFor), zap.String(LogFieldExpression, query))
		Remove(el)
		return nil
	}

	out := NewContainer()
	values := r.values()
	for _, i := range values {
		if err := w.expandPass(ctx, rs, el, out, map[string]any{r.name: i}); err != nil {
			return err
		}
	}

	w.logger.Debug(LogMsgLoopDone, zap.String(LogFieldTag, TagFor), zap.Int(LogFieldIterations, len(values)))
	ReplaceWithChildren(el, out)
	return nil
}

// eachQuery is a parsed each query.
type eachQuery struct {
	item string
	key  string
	expr string
}

// parseEachQuery parses "item in expr" or "item, key in expr".
func parseEachQuery(query string) (eachQuery, bool) {
	fields := strings.Fields(query)
	in := -1
	for i, f := range fields {
		if f == EachKeywordIn {
			in = i
			break
		}
	}
	if in < 1 || in == len(fields)-1 {
		return eachQuery{}, false
	}

	names := strings.Split(strings.Join(fields[:in], StringValueEmpty), ",")
	if len(names) > 2 {
		return eachQuery{}, false
	}
	q := eachQuery{expr: strings.Join(fields[in+1:], " ")}
	q.item = strings.TrimPrefix(names[0], string(ExprVariableSigil))
	if len(names) == 2 {
		q.key = strings.TrimPrefix(names[1], string(ExprVariableSigil))
		if q.key == StringValueEmpty {
			return eachQuery{}, false
		}
	}
	return q, q.item != StringValueEmpty
}

// eachDirective repeats its children over a list or map.
type eachDirective struct{}

func (eachDirective) Name() string { return TagEach }

func (eachDirective) Execute(ctx context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	query, _ := GetAttr(el, AttrExpression)
	q, ok := parseEachQuery(query)
	if !ok {
		w.logger.Debug(LogMsgLoopMalformed, zap.String(LogFieldTag, TagEach), zap.String(LogFieldExpression, query))
		Remove(el)
		return nil
	}

	collection := w.EvaluateLenient(rs, q.expr)
	items, ok := Iterate(collection)
	if !ok {
		w.logger.Debug(LogMsgLoopMalformed, zap.String(LogFieldTag, TagEach), zap.String(LogFieldExpression, q.expr))
		Remove(el)
		return nil
	}

	out := NewContainer()
	for _, item := range items {
		vars := map[string]any{q.item: item.Value}
		if q.key != StringValueEmpty {
			vars[q.key] = item.Key
		}
		if err := w.expandPass(ctx, rs, el, out, vars); err != nil {
			return err
		}
	}

	w.logger.Debug(LogMsgLoopDone, zap.String(LogFieldTag, TagEach), zap.Int(LogFieldIterations, len(items)))
	ReplaceWithChildren(el, out)
	return nil
}
