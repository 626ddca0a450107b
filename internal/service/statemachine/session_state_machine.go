package statemachine

import (
	"fmt"

	"k8s.io/klog/v2"
)

// Phase 定义会话的所有可能阶段
type Phase string

const (
	PhaseIdle               Phase = "idle"                // 会话尚未开始
	PhaseAwaitingDocument   Phase = "awaiting_document"   // 等待上传文档
	PhaseAnalyzing          Phase = "analyzing"           // 正在分析文档
	PhaseAwaitingConsent    Phase = "awaiting_consent"    // 分析完成，等待用户确认开始问答
	PhaseInQA               Phase = "in_qa"               // 逐题收集答案
	PhaseGeneratingDocument Phase = "generating_document" // 正在生成完成文档
	PhaseDone               Phase = "done"                // 文档已生成
)

// PhaseTransition 定义会话阶段迁移
type PhaseTransition struct {
	From Phase
	To   Phase
}

// SessionStateMachine 会话阶段状态机
type SessionStateMachine struct {
	// 定义所有合法的阶段迁移
	allowedTransitions map[PhaseTransition]bool
}

// NewSessionStateMachine 创建新的会话状态机
func NewSessionStateMachine() *SessionStateMachine {
	sm := &SessionStateMachine{
		allowedTransitions: make(map[PhaseTransition]bool),
	}

	// 合法迁移路径
	// idle -> awaiting_document -> analyzing -> awaiting_consent -> in_qa
	//   -> generating_document -> done
	// analyzing -> awaiting_document（提取或分析失败，可重新上传）
	// 任意阶段 -> awaiting_document（用户要求分析新文档，丢弃会话数据）
	transitions := []PhaseTransition{
		// 正常流程
		{PhaseIdle, PhaseAwaitingDocument},
		{PhaseAwaitingDocument, PhaseAnalyzing},
		{PhaseAnalyzing, PhaseAwaitingConsent},
		{PhaseAwaitingConsent, PhaseInQA},
		{PhaseInQA, PhaseGeneratingDocument},
		{PhaseGeneratingDocument, PhaseDone},

		// 失败回退
		{PhaseAnalyzing, PhaseAwaitingDocument},
		{PhaseGeneratingDocument, PhaseInQA},

		// 重新开始
		{PhaseAwaitingConsent, PhaseAwaitingDocument},
		{PhaseInQA, PhaseAwaitingDocument},
		{PhaseGeneratingDocument, PhaseAwaitingDocument},
		{PhaseDone, PhaseAwaitingDocument},
	}

	for _, t := range transitions {
		sm.allowedTransitions[t] = true
	}

	return sm
}

// CanTransition 检查阶段迁移是否合法
func (sm *SessionStateMachine) CanTransition(from, to Phase) bool {
	if from == to {
		return false // 不允许阶段不变
	}
	return sm.allowedTransitions[PhaseTransition{From: from, To: to}]
}

// ValidateTransition 验证阶段迁移并返回错误
func (sm *SessionStateMachine) ValidateTransition(from, to Phase) error {
	if !sm.CanTransition(from, to) {
		return &InvalidPhaseTransitionError{
			From: string(from),
			To:   string(to),
		}
	}
	return nil
}

// Transition 执行阶段迁移（带日志）
func (sm *SessionStateMachine) Transition(from, to Phase, sessionID string) error {
	if err := sm.ValidateTransition(from, to); err != nil {
		klog.V(6).Infof("会话阶段迁移被拒绝: sessionID=%s, %s -> %s, error=%v",
			sessionID, from, to, err)
		return err
	}

	klog.V(6).Infof("会话阶段迁移成功: sessionID=%s, %s -> %s", sessionID, from, to)
	return nil
}

// InvalidPhaseTransitionError 无效的阶段迁移错误
type InvalidPhaseTransitionError struct {
	From string
	To   string
}

func (e *InvalidPhaseTransitionError) Error() string {
	return fmt.Sprintf("invalid session phase transition: %s -> %s", e.From, e.To)
}

// InWorkflow 判断会话是否处于文档补全流程中（已有分析在手）
func InWorkflow(phase Phase) bool {
	return phase == PhaseAwaitingConsent || phase == PhaseInQA || phase == PhaseGeneratingDocument
}
