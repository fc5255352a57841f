package sqlinline

const QCreatePreferencesTable = `--sql 3f0b6a1e-5c2d-4e8f-9a71-2d6c4b8e0f13
create table if not exists client_preferences (
    key text primary key,
    value text not null,
    updated_at timestamptz not null default now()
);
`

const QSelectPreference = `--sql 9b2e7c44-1d3a-4f6b-8e25-7a0c9d1f3b68
select value
from client_preferences
where key = $1::text
limit 1;
`

const QUpsertPreference = `--sql c7d1a95e-2b4f-4a0e-b3c8-5e9f6a2d7c10
insert into client_preferences (key, value, updated_at)
values ($1::text, $2::text, now())
on conflict (key) do update set
    value = excluded.value,
    updated_at = now();
`
