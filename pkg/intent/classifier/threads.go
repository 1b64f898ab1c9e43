package classifier

import (
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/pending"
)

type threadOps struct{}

func (threadOps) Name() string { return "thread_ops" }

func (threadOps) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	threadWord := in.has("スレッド", "thread", "調整", "募集")
	switch {
	case in.has("選択", "select", "切り替え", "切替", "switch to", "開いて", "open thread"):
		if m := reThreadRef.FindStringSubmatch(in.Norm); m != nil {
			id := m[1]
			if id == "" {
				id = m[2]
			}
			return rule(intent.ThreadSelect, 0.95, intent.ThreadParams{ThreadID: id})
		}
		if threadWord {
			return clarify(intent.ThreadSelect, 0.8, intent.ThreadParams{}, "thread_id", "どのスレッドを選びますか? 番号で指定してください。")
		}

	case in.has("再開", "reopen", "re-open", "開き直"):
		id, ok := threadRef(in, ctx)
		if !ok {
			return clarify(intent.ThreadReopen, 0.8, intent.ThreadParams{}, "thread_id", "再開するスレッドを番号で指定してください。")
		}
		return rule(intent.ThreadReopen, 0.9, intent.ThreadParams{ThreadID: id})

	case threadWord && in.has("閉じ", "クローズ", "締め切", "締切", "close", "終了"):
		id, ok := threadRef(in, ctx)
		if !ok {
			return clarify(intent.ThreadClose, 0.8, intent.ThreadParams{}, "thread_id", "どのスレッドを閉じますか? 番号で指定してください。")
		}
		return gated(intent.ThreadClose, 0.9, intent.ThreadParams{ThreadID: id}, &pending.State{
			ThreadID: ctx.PendingKey(),
			Summary:  "スレッド" + id + "を閉じますか?",
			Payload:  pending.ThreadCloseConfirm{TargetThreadID: id},
		})

	case in.has("回答状況", "回答状態", "返信状況", "誰が回答", "誰が答え", "まだ回答", "進捗", "status") &&
		!in.has("リマインド", "remind", "保留", "pending"):
		id, ok := threadRef(in, ctx)
		if !ok {
			return clarify(intent.ThreadStatus, 0.8, intent.ThreadParams{}, "thread_id", "どのスレッドの回答状況を確認しますか?")
		}
		return rule(intent.ThreadStatus, 0.9, intent.ThreadParams{ThreadID: id})
	}
	return nil
}

type lists struct{}

func (lists) Name() string { return "lists" }

func (lists) Classify(in Input, _ Context, _ *pending.State) *intent.Result {
	if in.has("保留中", "何待ち", "pending status", "what's pending", "what is pending", "確認待ち") {
		return rule(intent.PendingStatus, 0.9, nil)
	}
	if !in.has("一覧", "リスト", "list", "全部見せて", "show all") {
		return nil
	}
	switch {
	case in.has("連絡先", "contacts", "contact"):
		return rule(intent.ContactList, 0.95, nil)
	case in.has("スレッド", "threads", "thread"):
		return rule(intent.ThreadList, 0.95, nil)
	case in.has("プール", "pools", "pool"):
		return rule(intent.PoolList, 0.95, nil)
	case in.has("関係", "つながり", "relationships", "relationship"):
		return rule(intent.RelationList, 0.95, nil)
	case in.has("保留", "pending", "待ち"):
		return rule(intent.PendingStatus, 0.9, nil)
	case in.has("確定", "予定", "スケジュール", "schedules", "meetings", "schedule"):
		return rule(intent.ScheduleList, 0.9, nil)
	}
	return nil
}
