// Package plugin wires the rectangle tool into a host application through a
// checkable menu action.
package plugin

import (
	"github.com/philipparndt/rectdraw/internal/logger"
	"github.com/philipparndt/rectdraw/internal/tool"
)

const (
	// MenuName is the host menu the plugin adds its action to
	MenuName = "&Rectangle Drawing Tool"
	// ActionText is the label of the toggle action
	ActionText = "Draw Rectangle"
)

// Canvas is the map canvas as seen by the plugin
type Canvas interface {
	tool.Canvas
	SetMapTool(t tool.MapTool)
	UnsetMapTool(t tool.MapTool)
}

// Interface is the host surface a plugin is loaded into
type Interface interface {
	MapCanvas() Canvas
	Project() tool.Project
	MessageBar() tool.Messenger
	AddPluginToMenu(menu string, action *Action)
	RemovePluginMenu(menu string, action *Action)
}

// RectanglePlugin owns the toggle action and the tool it activates
type RectanglePlugin struct {
	iface  Interface
	canvas Canvas
	opts   []tool.Option
	action *Action
	tool   *tool.RectangleTool
}

// ClassFactory creates the plugin for a host. Options are passed to every
// tool the plugin creates.
func ClassFactory(iface Interface, opts ...tool.Option) *RectanglePlugin {
	return &RectanglePlugin{
		iface:  iface,
		canvas: iface.MapCanvas(),
		opts:   opts,
	}
}

// InitGUI registers the toggle action
func (p *RectanglePlugin) InitGUI() {
	p.action = NewAction(ActionText)
	p.action.SetCheckable(true)
	p.action.OnTriggered(p.toggle)
	p.iface.AddPluginToMenu(MenuName, p.action)
}

// Unload removes the action from the host
func (p *RectanglePlugin) Unload() {
	if p.action == nil {
		return
	}
	p.iface.RemovePluginMenu(MenuName, p.action)
	p.action = nil
}

// Action returns the registered action, or nil before InitGUI
func (p *RectanglePlugin) Action() *Action {
	return p.action
}

// Tool returns the active tool, or nil when toggled off
func (p *RectanglePlugin) Tool() *tool.RectangleTool {
	return p.tool
}

func (p *RectanglePlugin) toggle(checked bool) {
	if checked {
		p.tool = tool.New(p.canvas, p.iface.Project(), p.iface.MessageBar(), p.opts...)
		p.canvas.SetMapTool(p.tool)
		logger.L().Debug("rectangle tool enabled")
		return
	}
	if p.tool != nil {
		p.canvas.UnsetMapTool(p.tool)
		p.tool.OnDeactivate()
		p.tool = nil
		logger.L().Debug("rectangle tool disabled")
	}
}
