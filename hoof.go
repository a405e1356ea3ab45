// Package hoof renders HTML views whose markup carries directives.
//
// A view is an HTML document or fragment. Elements such as <if>, <for>,
// <include> or <cached> are directives executed while the tree is
// walked; attributes starting with ":" bind expressions to attributes.
// Text and attribute values may contain {{ expr }} placeholders.
//
//	<extends file="layouts/main"></extends>
//	<block name="content">
//	  <h1>{{ title }}</h1>
//	  <if :="user">
//	    <p>Welcome back, {{ user.name }}</p>
//	  </if>
//	  <else><a href="/login">Sign in</a></else>
//	  <ul>
//	    <each :="item in items"><li :class="{active: item.active}">{{ item.label }}</li></each>
//	  </ul>
//	</block>
//
// # Basic Usage
//
//	engine := hoof.MustNew(hoof.WithViewsRoot("views"))
//	out, err := engine.Render(ctx, "pages/home", map[string]any{
//	    "title": "Home",
//	}, &hoof.Request{Path: "/"})
//
// # Directives
//
// Conditionals: <if :="expr">, <elif :="expr">, <else>, and
// <case :="expr"> with <when :="value"> and <default> children.
//
// Iteration: <for :="i from 1 through 10"> (also "to", exclusive) and
// <each :="item in list"> or <each :="item, key in map">.
//
// Composition: <include file="x" else="y">, <require file="x">,
// <extends file="parent"> and <block name="x">.
//
// Ancillary: <cached ttl="60" key="k">, <csrf>, <lang key="file.path">
// and <debug info="expr">.
//
// Attributes: :attr="expr", :class="{name: cond}" and :hide="expr".
//
// # Caching
//
// With a fragment store configured, <cached> content and whole pages
// rendered with RenderCached are stored under the cache directory and
// replayed while younger than their ttl. Stores: memory, filesystem
// (optionally zstd or lz4 compressed) and PostgreSQL.
//
// # Error Handling
//
// Errors are go-cuserr errors with the codes HOOF_MISSING_RESOURCE,
// HOOF_EVALUATION, HOOF_INHERITANCE and HOOF_RENDER_ABORT. Use
// IsMissingResource and IsInheritanceError to classify them.
//
// # Configuration
//
// Customize the engine with functional options or a YAML file:
//
//	cfg, _ := hoof.LoadConfig("hoof.yaml")
//	opts, _ := cfg.Options()
//	engine, _ := hoof.New(append(opts, hoof.WithLogger(logger))...)
package hoof
